package engagements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
)

// Repository covers the three engagement tables. Status writes are
// conditional so concurrent lifecycle transitions surface as zero-row
// updates instead of lost writes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateBooking(ctx context.Context, booking *models.BookingRequest) (*models.BookingRequest, error)
	FindBooking(ctx context.Context, id uuid.UUID) (*models.BookingRequest, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status enums.BookingStatus) error
	SetBookingCounter(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	ListBookingsByParty(ctx context.Context, userID uuid.UUID, role enums.PartyRole) ([]models.BookingRequest, error)

	CreateRequest(ctx context.Context, request *models.MaintenanceRequest) (*models.MaintenanceRequest, error)
	FindRequest(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	UpdateRequestStatus(ctx context.Context, id uuid.UUID, status enums.MaintenanceStatus) error
	ListRequestsByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.MaintenanceRequest, error)

	CreateQuote(ctx context.Context, quote *models.QuoteSubmission) (*models.QuoteSubmission, error)
	FindQuote(ctx context.Context, id uuid.UUID) (*models.QuoteSubmission, error)
	UpdateQuoteStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) error
	ListQuotesByRequest(ctx context.Context, requestID uuid.UUID) ([]models.QuoteSubmission, error)
	ListQuotesBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.QuoteSubmission, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an engagements repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBooking(ctx context.Context, booking *models.BookingRequest) (*models.BookingRequest, error) {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) FindBooking(ctx context.Context, id uuid.UUID) (*models.BookingRequest, error) {
	var booking models.BookingRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status enums.BookingStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.BookingRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
}

func (r *repository) SetBookingCounter(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BookingRequest{}).
		Where("id = ? AND status = ?", id, enums.BookingStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListBookingsByParty(ctx context.Context, userID uuid.UUID, role enums.PartyRole) ([]models.BookingRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.BookingRequest{})
	if role == enums.PartyRoleBuyer {
		query = query.Where("buyer_id = ?", userID)
	} else {
		query = query.Where("seller_id = ?", userID)
	}
	var bookings []models.BookingRequest
	if err := query.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) CreateRequest(ctx context.Context, request *models.MaintenanceRequest) (*models.MaintenanceRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) FindRequest(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) UpdateRequestStatus(ctx context.Context, id uuid.UUID, status enums.MaintenanceStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.MaintenanceRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
}

func (r *repository) ListRequestsByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.MaintenanceRequest, error) {
	var requests []models.MaintenanceRequest
	err := r.db.WithContext(ctx).
		Preload("Quotes").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) CreateQuote(ctx context.Context, quote *models.QuoteSubmission) (*models.QuoteSubmission, error) {
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) FindQuote(ctx context.Context, id uuid.UUID) (*models.QuoteSubmission, error) {
	var quote models.QuoteSubmission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) UpdateQuoteStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.QuoteSubmission{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
}

func (r *repository) ListQuotesByRequest(ctx context.Context, requestID uuid.UUID) ([]models.QuoteSubmission, error) {
	var quotes []models.QuoteSubmission
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *repository) ListQuotesBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.QuoteSubmission, error) {
	var quotes []models.QuoteSubmission
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}
