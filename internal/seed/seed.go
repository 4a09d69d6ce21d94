// Package seed bulk-loads the EVE static data export into the reference
// tables. These are one-off loaders with no state machine; a failed batch
// aborts the run.
package seed

import (
	"encoding/json"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/evetools/tokend/model"
	"github.com/evetools/tokend/params"
)

type sdeType struct {
	GroupID   int64             `yaml:"groupID"`
	Name      map[string]string `yaml:"name"`
	Volume    float64           `yaml:"volume"`
	Published bool              `yaml:"published"`
}

type sdeBlueprint struct {
	BlueprintTypeID    int64          `yaml:"blueprintTypeID"`
	MaxProductionLimit int            `yaml:"maxProductionLimit"`
	Activities         map[string]any `yaml:"activities"`
}

// TypeIDs loads fsd/typeIDs.yaml rows into the item_types table.
func TypeIDs(db *gorm.DB, filename string) error {
	blob, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	var items map[int64]sdeType
	if err := yaml.Unmarshal(blob, &items); err != nil {
		return err
	}
	if err := db.AutoMigrate(&model.ItemType{}); err != nil {
		return err
	}
	rows := make([]model.ItemType, 0, len(items))
	for typeID, item := range items {
		rows = append(rows, model.ItemType{
			TypeID:    typeID,
			GroupID:   item.GroupID,
			Name:      item.Name["en"],
			Volume:    item.Volume,
			Published: item.Published,
		})
	}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, params.SeedBatchSize).Error; err != nil {
		return err
	}
	slog.Info("seeded item types", "count", len(rows))
	return nil
}

// Blueprints loads fsd/blueprints.yaml rows into the blueprints table. The
// activities tree is stored as a JSON document, not normalized.
func Blueprints(db *gorm.DB, filename string) error {
	blob, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	var blueprints map[int64]sdeBlueprint
	if err := yaml.Unmarshal(blob, &blueprints); err != nil {
		return err
	}
	if err := db.AutoMigrate(&model.Blueprint{}); err != nil {
		return err
	}
	rows := make([]model.Blueprint, 0, len(blueprints))
	for typeID, bp := range blueprints {
		activities, err := json.Marshal(bp.Activities)
		if err != nil {
			return err
		}
		if bp.BlueprintTypeID == 0 {
			bp.BlueprintTypeID = typeID
		}
		rows = append(rows, model.Blueprint{
			BlueprintTypeID:    bp.BlueprintTypeID,
			MaxProductionLimit: bp.MaxProductionLimit,
			Activities:         string(activities),
		})
	}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, params.SeedBatchSize).Error; err != nil {
		return err
	}
	slog.Info("seeded blueprints", "count", len(rows))
	return nil
}
