package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/internal/storage"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrDesignNotFound        = errors.New("design not found")
	ErrInvalidDesignFileType = errors.New("design file must be a JPEG, PNG or PDF")
	ErrInvalidDesignSize     = errors.New("invalid print size")
	ErrInvalidDesignFile     = errors.New("design file was not uploaded by this user")
	ErrStorageUnavailable    = errors.New("design storage is not configured")
)

var designContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// DesignUploader issues upload URLs for design files
type DesignUploader interface {
	PresignUpload(ctx context.Context, key, contentType string) (*storage.PresignedUpload, error)
	FileURL(key string) string
}

type CreateDesignInput struct {
	Title   string
	Notes   string
	Size    string
	Framed  bool
	FileKey string
	Phone   string
}

type DesignService interface {
	RequestUploadURL(ctx context.Context, userID uint, filename, contentType string) (*storage.PresignedUpload, error)
	CreateDesign(userID uint, input CreateDesignInput) (*model.CustomDesign, *model.Cart, error)
	GetUserDesigns(userID uint) ([]model.CustomDesign, error)
	GetDesign(userID, designID uint) (*model.CustomDesign, error)
}

type designService struct {
	designRepo  repository.DesignRepository
	cartService CartService
	uploader    DesignUploader
}

// NewDesignService wires the design workflow. uploader may be nil when S3 is
// not configured; upload requests then fail with ErrStorageUnavailable.
func NewDesignService(
	designRepo repository.DesignRepository,
	cartService CartService,
	uploader DesignUploader,
) DesignService {
	return &designService{
		designRepo:  designRepo,
		cartService: cartService,
		uploader:    uploader,
	}
}

func designKeyPrefix(userID uint) string {
	return fmt.Sprintf("designs/%d/", userID)
}

func (s *designService) RequestUploadURL(ctx context.Context, userID uint, filename, contentType string) (*storage.PresignedUpload, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	defaultExt, ok := designContentTypes[contentType]
	if !ok {
		return nil, ErrInvalidDesignFileType
	}
	if s.uploader == nil {
		return nil, ErrStorageUnavailable
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = defaultExt
	}
	key := designKeyPrefix(userID) + uuid.NewString() + ext

	upload, err := s.uploader.PresignUpload(ctx, key, contentType)
	if err != nil {
		logger.Error("Failed to presign design upload", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Design upload URL issued", map[string]interface{}{
		"user_id": userID,
		"key":     key,
	})
	return upload, nil
}

// CreateDesign records an uploaded design, prices it and puts it in the cart.
// The design and its cart line are written in one transaction.
func (s *designService) CreateDesign(userID uint, input CreateDesignInput) (*model.CustomDesign, *model.Cart, error) {
	size, ok := model.ParsePrintSize(input.Size)
	if !ok {
		return nil, nil, ErrInvalidDesignSize
	}

	key := strings.TrimSpace(input.FileKey)
	if !strings.HasPrefix(key, designKeyPrefix(userID)) || len(key) == len(designKeyPrefix(userID)) {
		logger.Warn("Rejected design with foreign file key", map[string]interface{}{
			"user_id":  userID,
			"file_key": key,
		})
		return nil, nil, ErrInvalidDesignFile
	}

	fileURL := ""
	if s.uploader != nil {
		fileURL = s.uploader.FileURL(key)
	}

	design := &model.CustomDesign{
		UserID:  userID,
		Title:   strings.TrimSpace(input.Title),
		Notes:   strings.TrimSpace(input.Notes),
		Size:    size,
		Framed:  input.Framed,
		FileKey: key,
		FileURL: fileURL,
		Phone:   strings.TrimSpace(input.Phone),
		Price:   model.FinalPrice(size, input.Framed),
		Status:  model.DesignStatusPending,
	}
	cart, err := s.cartService.AddNewDesignItem(userID, design, func(tx *gorm.DB, d *model.CustomDesign) error {
		// a retried transaction must insert again rather than reuse a rolled back id
		d.ID = 0
		return s.designRepo.WithTx(tx).Create(d)
	})
	if err != nil {
		logger.Error("Failed to create custom design", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, nil, err
	}

	logger.Info("Custom design created", map[string]interface{}{
		"design_id": design.ID,
		"user_id":   userID,
		"size":      size,
		"framed":    input.Framed,
		"price":     design.Price.String(),
	})
	return design, cart, nil
}

func (s *designService) GetUserDesigns(userID uint) ([]model.CustomDesign, error) {
	return s.designRepo.FindByUserID(userID)
}

// GetDesign returns the design only to its owner
func (s *designService) GetDesign(userID, designID uint) (*model.CustomDesign, error) {
	design, err := s.designRepo.FindByID(designID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDesignNotFound
		}
		return nil, err
	}
	if design.UserID != userID {
		return nil, ErrDesignNotFound
	}
	return design, nil
}
