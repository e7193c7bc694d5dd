package models

// NotificationModel is addressed to RecipientUserID and keeps a snapshot of
// the project it was raised for.
type NotificationModel struct {
	Base
	RecipientUserID int64  `json:"userIdTour"  gorm:"not null;index"`
	SenderUserID    int64  `json:"userId"      gorm:"index"`
	ProjectID       int64  `json:"projectId"   gorm:"index"`
	ProjectName     string `json:"projectName" gorm:"size:255"`
	Message         string `json:"message"     gorm:"type:text"`
	IsRead          bool   `json:"isRead"      gorm:"not null;default:false;index"`
}

func (NotificationModel) TableName() string { return "notifications" }
