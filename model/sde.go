package model

// ItemType is one row of the static data export's typeIDs table. Seeded in
// bulk, read-only afterwards.
type ItemType struct {
	TypeID    int64   `gorm:"primaryKey;autoIncrement:false"`
	GroupID   int64   `gorm:"index"`
	Name      string  `gorm:"size:256"`
	Volume    float64 `gorm:"default:0"`
	Published bool    `gorm:"default:false"`
}

func (ItemType) TableName() string {
	return "item_types"
}

// Blueprint is one row of the static data export's blueprints table. The
// activities tree is kept as an opaque JSON document.
type Blueprint struct {
	BlueprintTypeID    int64  `gorm:"primaryKey;autoIncrement:false"`
	MaxProductionLimit int    `gorm:"default:0"`
	Activities         string `gorm:"type:mediumtext"`
}

func (Blueprint) TableName() string {
	return "blueprints"
}
