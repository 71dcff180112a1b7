package utils

import (
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/models"
)

// GetAllCategoryIDs walks the category tree breadth first and returns rootID
// followed by every descendant.
func GetAllCategoryIDs(d *gorm.DB, rootID uint) ([]uint, error) {
	var result []uint
	result = append(result, rootID)

	var queue = []uint{rootID}
	seen := map[uint]bool{rootID: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var children []models.Category
		err := d.Where("parent_id = ?", current).Find(&children).Error
		if err != nil {
			return nil, err
		}

		for _, child := range children {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			result = append(result, child.ID)
			queue = append(queue, child.ID)
		}
	}

	return result, nil
}

// IsDescendant reports whether candidate sits in the subtree under rootID.
// Used to refuse parent assignments that would create a cycle.
func IsDescendant(d *gorm.DB, rootID, candidate uint) (bool, error) {
	ids, err := GetAllCategoryIDs(d, rootID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == candidate {
			return true, nil
		}
	}
	return false, nil
}
