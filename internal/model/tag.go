package model

// Tag is a level-gated cosmetic label. A user wears the highest tag
// whose required level they have reached.
type Tag struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"not null;type:varchar(64)" json:"name"`
	ColorHex      string `gorm:"not null;type:varchar(16)" json:"color_hex"`
	RequiredLevel int    `gorm:"not null;index" json:"required_level"`
}

func (Tag) TableName() string {
	return "tags"
}

// TagForLevel picks the highest tag whose threshold the level meets.
// Tags must be sorted by required_level ascending. Returns nil when no
// tag qualifies.
func TagForLevel(tags []Tag, level int) *Tag {
	if level < 1 {
		level = 1
	}
	var picked *Tag
	for i := range tags {
		if tags[i].RequiredLevel <= level {
			picked = &tags[i]
		} else {
			break
		}
	}
	return picked
}
