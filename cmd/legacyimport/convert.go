package main

import (
	"strings"
	"time"

	"github.com/panotour/core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// legacyUser covers both historical user schemas, which disagree on the
// casing of the id field.
type legacyUser struct {
	UserIDUpper    bson.RawValue `bson:"userID"`
	UserID         bson.RawValue `bson:"userId"`
	Account        string        `bson:"account"`
	Password       string        `bson:"password"`
	Authentication bson.RawValue `bson:"authentication"`
	UserName       string        `bson:"userName"`
	Type           bson.RawValue `bson:"type"`
	Address        string        `bson:"address"`
	City           bson.RawValue `bson:"city"`
	District       bson.RawValue `bson:"district"`
	Email          string        `bson:"email"`
	Phone          bson.RawValue `bson:"phone"`
	Avatar         string        `bson:"avatar"`
	ImageIntroduce bson.RawValue `bson:"imageIntroduce"`
	CostRange      bson.RawValue `bson:"costRange"`
	CreatedAt      bson.RawValue `bson:"createdAt"`
	UpdatedAt      bson.RawValue `bson:"updatedAt"`
	Comments       bson.RawValue `bson:"comments"`
}

// convertUser returns the user and the number of inline comments it carried.
// Inline comments have no project reference and are not migrated.
func convertUser(doc bson.Raw) (*models.UserModel, int, error) {
	var in legacyUser
	if err := bson.Unmarshal(doc, &in); err != nil {
		return nil, 0, err
	}
	id := rvInt(in.UserID)
	if id == 0 {
		id = rvInt(in.UserIDUpper)
	}
	account := strings.TrimSpace(in.Account)
	if id <= 0 || account == "" || in.Password == "" {
		return nil, 0, errSkip
	}
	typ := models.UserType(rvInt(in.Type))
	if !typ.Valid() {
		typ = models.UserTypeCustomer
	}
	name := in.UserName
	if name == "" {
		name = account
	}
	u := &models.UserModel{
		UserID:         id,
		Account:        account,
		Password:       in.Password,
		Authentication: int(rvInt(in.Authentication)),
		UserName:       name,
		Type:           typ,
		Role:           models.RoleUser,
		Avatar:         in.Avatar,
		Address:        in.Address,
		City:           rvString(in.City),
		District:       rvString(in.District),
		Email:          in.Email,
		Phone:          rvString(in.Phone),
		CostRange:      rvString(in.CostRange),
		ImageIntroduce: models.StringArray(rvStrings(in.ImageIntroduce)),
	}
	setTimes(&u.Base, in.CreatedAt, in.UpdatedAt)
	return u, rvLen(in.Comments), nil
}

type legacyHotspot struct {
	Pitch         bson.RawValue `bson:"pitch"`
	Yaw           bson.RawValue `bson:"yaw"`
	Label         string        `bson:"label"`
	TargetSceneID string        `bson:"targetSceneId"`
}

type legacyScene struct {
	ID            string          `bson:"id"`
	Name          string          `bson:"name"`
	OriginalImage string          `bson:"originalImage"`
	TilesPath     string          `bson:"tilesPath"`
	Audio         string          `bson:"audio"`
	Hotspots      []legacyHotspot `bson:"hotspots"`
	IsFirst       bool            `bson:"isFirst"`
}

type legacyStep struct {
	Day     bson.RawValue `bson:"day"`
	Content string        `bson:"content"`
}

type legacyProject struct {
	ProjectID     bson.RawValue `bson:"projectId"`
	UserID        bson.RawValue `bson:"userId"`
	Title         string        `bson:"title"`
	Description   string        `bson:"description"`
	DepartureCity bson.RawValue `bson:"departureCity"`
	CoverImage    string        `bson:"coverImage"`
	DepartureDate bson.RawValue `bson:"departureDate"`
	Price         bson.RawValue `bson:"price"`
	Sale          bson.RawValue `bson:"sale"`
	TimeLastBook  bson.RawValue `bson:"timeLastBook"`
	IsForeign     bool          `bson:"isForeign"`
	IsLock        bool          `bson:"isLock"`
	TourSteps     []legacyStep  `bson:"tourSteps"`
	Scenes        []legacyScene `bson:"scenes"`
	CreatedAt     bson.RawValue `bson:"createdAt"`
	UpdatedAt     bson.RawValue `bson:"updatedAt"`
}

func convertProject(doc bson.Raw) (*models.ProjectModel, error) {
	var in legacyProject
	if err := bson.Unmarshal(doc, &in); err != nil {
		return nil, err
	}
	id := rvInt(in.ProjectID)
	if id <= 0 {
		return nil, errSkip
	}
	p := &models.ProjectModel{
		ProjectID:     id,
		OwnerUserID:   rvInt(in.UserID),
		Title:         in.Title,
		Description:   in.Description,
		DepartureCity: int(rvInt(in.DepartureCity)),
		DepartureDate: rvTimePtr(in.DepartureDate),
		CoverImage:    in.CoverImage,
		Price:         rvFloat(in.Price),
		Sale:          rvFloat(in.Sale),
		TimeLastBook:  rvTimePtr(in.TimeLastBook),
		IsForeign:     in.IsForeign,
		IsLock:        in.IsLock,
		TourSteps:     make([]models.TourStep, 0, len(in.TourSteps)),
		Scenes:        make([]models.Scene, 0, len(in.Scenes)),
	}
	for _, s := range in.TourSteps {
		p.TourSteps = append(p.TourSteps, models.TourStep{Day: rvString(s.Day), Content: s.Content})
	}
	for _, s := range in.Scenes {
		scene := models.Scene{
			ID:            s.ID,
			Name:          s.Name,
			OriginalImage: s.OriginalImage,
			TilesPath:     s.TilesPath,
			Audio:         s.Audio,
			IsFirst:       s.IsFirst,
			Hotspots:      make([]models.Hotspot, 0, len(s.Hotspots)),
		}
		if s.TilesPath != "" {
			scene.Type = models.SceneTypeMultires
		}
		for _, h := range s.Hotspots {
			hs := models.Hotspot{Label: h.Label, TargetSceneID: h.TargetSceneID}
			if h.Pitch.Type != 0 || h.Yaw.Type != 0 {
				hs.Position = models.Spherical{Pitch: rvFloat(h.Pitch), Yaw: rvFloat(h.Yaw)}
			}
			scene.Hotspots = append(scene.Hotspots, hs)
		}
		p.Scenes = append(p.Scenes, scene)
	}
	setTimes(&p.Base, in.CreatedAt, in.UpdatedAt)
	return p, nil
}

// legacyRow covers the flat collections: votes, comments, saved tours and
// notifications.
type legacyRow struct {
	ID          primitive.ObjectID `bson:"_id"`
	ProjectID   bson.RawValue      `bson:"projectId"`
	UserID      bson.RawValue      `bson:"userId"`
	CreatedAt   bson.RawValue      `bson:"createdAt"`
	Rating      bson.RawValue      `bson:"rating"`
	Content     string             `bson:"content"`
	ProjectName string             `bson:"projectName"`
	UserIDTour  bson.RawValue      `bson:"userIdTour"`
	Message     string             `bson:"message"`
	IsRead      bool               `bson:"isRead"`
}

func decodeRow(doc bson.Raw) (*legacyRow, error) {
	var in legacyRow
	if err := bson.Unmarshal(doc, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func convertVote(doc bson.Raw) (*models.VoteModel, error) {
	in, err := decodeRow(doc)
	if err != nil {
		return nil, err
	}
	rating := int(rvInt(in.Rating))
	v := &models.VoteModel{ProjectID: rvInt(in.ProjectID), UserID: rvInt(in.UserID), Rating: rating}
	if v.ProjectID <= 0 || v.UserID <= 0 || rating < models.MinRating || rating > models.MaxRating {
		return nil, errSkip
	}
	setTimes(&v.Base, in.CreatedAt, in.CreatedAt)
	return v, nil
}

func convertComment(doc bson.Raw) (*models.CommentModel, error) {
	in, err := decodeRow(doc)
	if err != nil {
		return nil, err
	}
	c := &models.CommentModel{ProjectID: rvInt(in.ProjectID), UserID: rvInt(in.UserID), Content: in.Content}
	if c.ProjectID <= 0 || strings.TrimSpace(c.Content) == "" {
		return nil, errSkip
	}
	c.ID = rowID(in.ID)
	setTimes(&c.Base, in.CreatedAt, in.CreatedAt)
	return c, nil
}

func convertSaved(doc bson.Raw) (*models.SavedTourModel, error) {
	in, err := decodeRow(doc)
	if err != nil {
		return nil, err
	}
	s := &models.SavedTourModel{UserID: rvInt(in.UserID), ProjectID: rvInt(in.ProjectID)}
	if s.UserID <= 0 || s.ProjectID <= 0 {
		return nil, errSkip
	}
	setTimes(&s.Base, in.CreatedAt, in.CreatedAt)
	return s, nil
}

func convertNotification(doc bson.Raw) (*models.NotificationModel, error) {
	in, err := decodeRow(doc)
	if err != nil {
		return nil, err
	}
	n := &models.NotificationModel{
		RecipientUserID: rvInt(in.UserIDTour),
		SenderUserID:    rvInt(in.UserID),
		ProjectID:       rvInt(in.ProjectID),
		ProjectName:     in.ProjectName,
		Message:         in.Message,
		IsRead:          in.IsRead,
	}
	if n.RecipientUserID <= 0 {
		return nil, errSkip
	}
	n.ID = rowID(in.ID)
	setTimes(&n.Base, in.CreatedAt, in.CreatedAt)
	return n, nil
}

// rowID keeps the Mongo ObjectID so that re-running an import updates rows
// instead of duplicating them.
func rowID(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

func setTimes(b *models.Base, created, updated bson.RawValue) {
	if t, ok := rvTime(created); ok {
		b.CreatedAt = t
	}
	if t, ok := rvTime(updated); ok {
		b.UpdatedAt = t
	} else if !b.CreatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
}
