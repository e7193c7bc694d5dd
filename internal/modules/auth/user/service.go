// Package user registers accounts, issues tokens and maintains profiles.
package user

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/panotour/core/internal/database"
	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/pkg/jwt"
	"github.com/panotour/core/internal/pkg/mediastore"
	"github.com/panotour/core/internal/pkg/password"
	"github.com/panotour/core/internal/pkg/sequence"
	"github.com/panotour/core/internal/pkg/validate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	avatarPrefix  = "images/avatar"
	companyPrefix = "images/company/introduce"
)

type Service struct {
	db       *gorm.DB
	ids      *sequence.Allocator
	media    mediastore.Store
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewService(db *gorm.DB, ids *sequence.Allocator, media mediastore.Store, tokenTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{db: db, ids: ids, media: media, tokenTTL: tokenTTL, logger: logger.Named("user")}
}

func (s *Service) issue(u *models.UserModel) (string, error) {
	return jwt.Sign(jwt.Identity{
		UserID:   u.UserID,
		Type:     int(u.Type),
		UserName: u.UserName,
		Role:     u.Role,
	}, s.tokenTTL)
}

// Register creates an account named by a phone number or email address.
func (s *Service) Register(ctx context.Context, dto *RegisterDTO) (string, *models.UserModel, error) {
	account := strings.TrimSpace(dto.Account)
	if account == "" || dto.Password == "" || dto.Type == 0 {
		return "", nil, errMissingData
	}
	if !dto.Type.Valid() {
		return "", nil, errInvalidType
	}
	kind := validate.Account(account)
	if kind == validate.AccountInvalid {
		return "", nil, errInvalidAccount
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.UserModel{}).Where("account = ?", account).Count(&n).Error; err != nil {
		return "", nil, err
	}
	if n > 0 {
		return "", nil, errAccountExists
	}

	hash, err := password.Hash(dto.Password)
	if err != nil {
		return "", nil, err
	}
	id, err := s.ids.Next(ctx, sequence.Users)
	if err != nil {
		return "", nil, err
	}
	u := &models.UserModel{
		UserID:         id,
		Account:        account,
		Password:       hash,
		Authentication: 1,
		UserName:       account,
		Type:           dto.Type,
		Role:           models.RoleUser,
	}
	if kind == validate.AccountPhone {
		u.Phone = account
	} else {
		u.Email = account
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return "", nil, errAccountExists
		}
		return "", nil, err
	}

	token, err := s.issue(u)
	return token, u, err
}

// Login checks credentials and returns a token. Legacy argon2 hashes are
// replaced with bcrypt on success.
func (s *Service) Login(ctx context.Context, account, plain string) (string, *models.UserModel, error) {
	account = strings.TrimSpace(account)
	if account == "" || plain == "" {
		return "", nil, errMissingData
	}
	var u models.UserModel
	err := s.db.WithContext(ctx).Where("account = ?", account).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, errUserNotFound
	}
	if err != nil {
		return "", nil, err
	}

	needsRehash, err := password.Verify(u.Password, plain)
	if errors.Is(err, password.ErrMismatch) {
		return "", nil, errWrongPassword
	}
	if err != nil {
		return "", nil, err
	}
	if needsRehash {
		s.rehash(ctx, &u, plain)
	}

	token, err := s.issue(&u)
	return token, &u, err
}

func (s *Service) rehash(ctx context.Context, u *models.UserModel, plain string) {
	hash, err := password.Hash(plain)
	if err != nil {
		s.logger.Warn("rehash failed", zap.Int64("user_id", u.UserID), zap.Error(err))
		return
	}
	if err := s.db.WithContext(ctx).Model(u).Update("password", hash).Error; err != nil {
		s.logger.Warn("store rehash failed", zap.Int64("user_id", u.UserID), zap.Error(err))
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (*models.UserModel, error) {
	var u models.UserModel
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// RoleOf returns the stored role of userID.
func (s *Service) RoleOf(ctx context.Context, userID int64) (string, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// UpdateProfile applies the non-empty fields of dto.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, dto *UpdateUserDTO) (*models.UserModel, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	set := func(col string, v *string, dst *string) {
		if v == nil || strings.TrimSpace(*v) == "" {
			return
		}
		updates[col] = strings.TrimSpace(*v)
		*dst = strings.TrimSpace(*v)
	}
	set("user_name", dto.UserName, &u.UserName)
	set("email", dto.Email, &u.Email)
	set("phone", dto.Phone, &u.Phone)
	set("address", dto.Address, &u.Address)
	if len(updates) == 0 {
		return u, nil
	}
	return u, s.db.WithContext(ctx).Model(u).Updates(updates).Error
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, dto *ChangePasswordDTO) error {
	if dto.PasswordOld == "" || dto.PasswordNew == "" || dto.PasswordConfirm == "" {
		return errMissingData
	}
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := password.Verify(u.Password, dto.PasswordOld); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return errWrongOldPassword
		}
		return err
	}
	if dto.PasswordNew != dto.PasswordConfirm {
		return errConfirmMismatch
	}
	hash, err := password.Hash(dto.PasswordNew)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(u).Update("password", hash).Error
}

// SetAvatar stores fh and points the profile at it. The previous avatar is
// removed when it lives in the same store.
func (s *Service) SetAvatar(ctx context.Context, userID int64, fh *multipart.FileHeader) (string, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	previous := u.Avatar
	url, err := mediastore.PutImage(ctx, s.media, avatarPrefix, fh)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Model(u).Update("avatar", url).Error; err != nil {
		s.discard(ctx, url)
		return "", err
	}
	if previous != "" && previous != url {
		s.discard(ctx, previous)
	}
	return url, nil
}

// UpdateCompany rewrites a company profile. New images, when given, replace
// the gallery.
func (s *Service) UpdateCompany(ctx context.Context, userID int64, dto *CompanyDTO, images []*multipart.FileHeader) (*models.UserModel, error) {
	if dto.UserName == "" || dto.Address == "" || dto.City == "" || dto.District == "" {
		return nil, errMissingData
	}
	if len(images) > maxCompanyImages {
		return nil, errTooManyImages
	}
	for _, fh := range images {
		if _, ok := mediastore.ImageExt(fh.Filename); !ok {
			return nil, mediastore.ErrImageType
		}
	}
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, fh := range images {
		url, err := mediastore.PutImage(ctx, s.media, companyPrefix, fh)
		if err != nil {
			for _, done := range urls {
				s.discard(ctx, done)
			}
			return nil, err
		}
		urls = append(urls, url)
	}

	updates := map[string]interface{}{
		"user_name": dto.UserName,
		"address":   dto.Address,
		"city":      dto.City,
		"district":  dto.District,
	}
	if dto.Phone != "" {
		updates["phone"] = dto.Phone
	}
	if dto.Email != "" {
		updates["email"] = dto.Email
	}
	if dto.CostRange != "" {
		updates["cost_range"] = dto.CostRange
	}
	previous := u.ImageIntroduce
	if len(urls) > 0 {
		updates["image_introduce"] = models.StringArray(urls)
	}
	if err := s.db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
		for _, done := range urls {
			s.discard(ctx, done)
		}
		return nil, err
	}
	if len(urls) > 0 {
		for _, old := range previous {
			s.discard(ctx, old)
		}
	}
	return s.Get(ctx, userID)
}

func (s *Service) discard(ctx context.Context, url string) {
	key, ok := s.media.Key(url)
	if !ok {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil {
		s.logger.Warn("remove media failed", zap.String("key", key), zap.Error(err))
	}
}

// PromoteAdmins grants the admin role to every listed account that exists.
func (s *Service) PromoteAdmins(ctx context.Context, accounts []string) error {
	if len(accounts) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("account IN ? AND role <> ?", accounts, models.RoleAdmin).
		Update("role", models.RoleAdmin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.logger.Info("promoted admin accounts", zap.Int64("count", res.RowsAffected))
	}
	return nil
}
