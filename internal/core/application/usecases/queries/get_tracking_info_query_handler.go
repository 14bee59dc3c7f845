package queries

import (
	"context"
	"database/sql"

	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetTrackingInfoQueryHandler resolves public tracking lookups against the
// stops read model. Rescheduled attempts share a reference, so the lookup
// always returns the most recently created record.
type GetTrackingInfoQueryHandler struct {
	db *gorm.DB
}

// NewGetTrackingInfoQueryHandler creates a handler for tracking queries.
func NewGetTrackingInfoQueryHandler(db *gorm.DB) GetTrackingInfoQueryHandler {
	return GetTrackingInfoQueryHandler{db: db}
}

// Handle executes the tracking lookup. The response is masked unless the
// query's token matches the stop's id, which is the access token embedded in
// the recipient's notification link.
func (h GetTrackingInfoQueryHandler) Handle(
	ctx context.Context,
	query GetTrackingInfoQuery,
) (GetTrackingInfoResponse, error) {
	if err := query.Validate(); err != nil {
		return GetTrackingInfoResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			recipient_name,
			location_address,
			sequence_index,
			estimated_arrival,
			actual_arrival,
			service_date,
			created_at,
			updated_at
		FROM stops
		WHERE reference = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, query.Reference()).Rows()
	if err != nil {
		return GetTrackingInfoResponse{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return GetTrackingInfoResponse{}, err
		}
		return GetTrackingInfoResponse{}, errs.NewObjectNotFoundError("stop", query.Reference())
	}

	var (
		id            uuid.UUID
		status        int
		recipientName string
		address       string
		sequence      sql.NullInt64
		estimated     sql.NullTime
		actual        sql.NullTime
	)
	response := GetTrackingInfoResponse{Reference: query.Reference()}

	err = rows.Scan(
		&id,
		&status,
		&recipientName,
		&address,
		&sequence,
		&estimated,
		&actual,
		&response.ServiceDate,
		&response.CreatedAt,
		&response.LastUpdatedAt,
	)
	if err != nil {
		return GetTrackingInfoResponse{}, err
	}

	response.Status = publicStatus(stop.Status(status))
	if sequence.Valid {
		position := int(sequence.Int64)
		response.SequencePosition = &position
	}
	if estimated.Valid {
		eta := estimated.Time
		response.EstimatedArrival = &eta
	}
	if actual.Valid {
		arrived := actual.Time
		response.ActualArrival = &arrived
	}

	if query.Token() != "" && query.Token() == id.String() {
		response.RecipientName = recipientName
		response.Address = address
	} else {
		response.RecipientName = maskName(recipientName)
		response.Address = maskAddress(address)
	}

	return response, nil
}
