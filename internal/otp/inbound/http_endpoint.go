package inbound

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/otp/usecase"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/router"
)

const headerIdempotencyKey = "Idempotency-Key"

type HTTPEndpoint struct {
	uc uc
}

func toRecordResponse(r entity.Record) RecordResponse {
	return RecordResponse{
		ID:          strconv.FormatInt(r.ID, 10),
		OwnerID:     r.OwnerID,
		OperationID: r.OperationID,
		Channel:     r.Channel.String(),
		Status:      r.Status.String(),
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}

func toPolicyResponse(p *entity.Policy) PolicyResponse {
	return PolicyResponse{
		CodeLength:      p.CodeLength,
		LifetimeMinutes: p.LifetimeMinutes,
		UpdatedAt:       p.UpdatedAt,
	}
}

// Issue mints a code for the authenticated user and delivers it.
// @Summary Issue OTP
// @Description Issues a one-time code bound to an operation and delivers it over the chosen channel. The code is echoed only for the file channel.
// @Tags OTP
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replay protection key"
// @Param request body IssueRequest true "Issue payload"
// @Success 201 {object} router.successResponse{data=IssueResponse} "Issued"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 409 {object} router.errorResponse "Duplicate issue request"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 503 {object} router.errorResponse "OTP policy is not configured"
// @Router /api/v1/otp/issue [post]
func (h *HTTPEndpoint) Issue(r *router.Request) (any, error) {
	var req IssueRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		OperationID:    req.OperationID,
		Channel:        req.Channel,
		Email:          req.Email,
		Phone:          req.Phone,
		TelegramChatID: req.TelegramChatID,
		IdempotencyKey: r.GetHeader(headerIdempotencyKey),
	})
	if err != nil {
		return nil, err
	}

	return IssueResponse{
		RecordResponse: toRecordResponse(out.Record),
		Code:           out.Record.Code,
		Delivered:      out.Delivered,
	}, nil
}

// Verify consumes a code.
// @Summary Verify OTP
// @Description Verifies and consumes a code. Not found, expired and already used codes map to 404, 410 and 409.
// @Tags OTP
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "Verified"
// @Failure 404 {object} router.errorResponse "OTP not found"
// @Failure 409 {object} router.errorResponse "OTP already used or expired"
// @Failure 410 {object} router.errorResponse "OTP has expired"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many failed verification attempts"
// @Router /api/v1/otp/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	outcome, err := h.uc.Verify(r.Context(), usecase.VerifyInput{Code: req.Code, OperationID: req.OperationID})
	if err != nil {
		return nil, err
	}
	if err := outcome.Err(); err != nil {
		return nil, err
	}

	return VerifyResponse{Outcome: outcome.String()}, nil
}

// GetPolicy returns the active policy.
// @Summary Get OTP policy
// @Tags OTP Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=PolicyResponse} "Policy"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Router /api/v1/otp/policy [get]
func (h *HTTPEndpoint) GetPolicy(r *router.Request) (any, error) {
	p, err := h.uc.GetPolicy(r.Context())
	if err != nil {
		return nil, err
	}

	return toPolicyResponse(p), nil
}

// UpdatePolicy replaces code length and lifetime.
// @Summary Update OTP policy
// @Description Code length must be 6-8 digits and lifetime 1-15 minutes.
// @Tags OTP Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body PolicyRequest true "Policy payload"
// @Success 200 {object} router.successResponse{data=PolicyResponse} "Policy"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/otp/policy [put]
func (h *HTTPEndpoint) UpdatePolicy(r *router.Request) (any, error) {
	var req PolicyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	p, err := h.uc.UpdatePolicy(r.Context(), usecase.UpdatePolicyInput{
		CodeLength:      req.CodeLength,
		LifetimeMinutes: req.LifetimeMinutes,
	})
	if err != nil {
		return nil, err
	}

	return toPolicyResponse(p), nil
}

// ListByOwner lists an owner's records without codes.
// @Summary List OTP records of an owner
// @Tags OTP Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Owner ID"
// @Success 200 {object} router.successResponse{data=RecordsResponse} "Records"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Router /api/v1/otp/owners/{id}/records [get]
func (h *HTTPEndpoint) ListByOwner(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	recs, err := h.uc.ListByOwner(r.Context(), usecase.OwnerInput{OwnerID: id})
	if err != nil {
		return nil, err
	}

	return RecordsResponse{Records: lo.Map(recs, func(r entity.Record, _ int) RecordResponse {
		return toRecordResponse(r)
	})}, nil
}

// DeleteByOwner purges an owner's records.
// @Summary Delete OTP records of an owner
// @Tags OTP Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Owner ID"
// @Success 200 {object} router.successResponse{data=DeleteOwnerResponse} "Deleted"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Router /api/v1/otp/owners/{id} [delete]
func (h *HTTPEndpoint) DeleteByOwner(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	n, err := h.uc.DeleteByOwner(r.Context(), usecase.OwnerInput{OwnerID: id})
	if err != nil {
		return nil, err
	}

	return DeleteOwnerResponse{Deleted: n}, nil
}
