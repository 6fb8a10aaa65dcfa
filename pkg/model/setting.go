package model

// SettingGroupID is the settings key holding the bound group chat id
const SettingGroupID = "group_id"

type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (Setting) TableName() string {
	return "settings"
}
