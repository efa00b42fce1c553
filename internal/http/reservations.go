package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/auth"
	dbreservations "github.com/mrlokans/readingcenter/internal/database/reservations"
	"github.com/mrlokans/readingcenter/internal/entities"
	"github.com/mrlokans/readingcenter/internal/reservations"
)

// ReservationsController exposes admission, lookup and the status lifecycle.
type ReservationsController struct {
	admitter ReservationAdmitter
	manager  ReservationUpdater
	lister   ReservationLister
	recorder ActivityRecorder
}

func NewReservationsController(admitter ReservationAdmitter, manager ReservationUpdater, lister ReservationLister, recorder ActivityRecorder) *ReservationsController {
	return &ReservationsController{
		admitter: admitter,
		manager:  manager,
		lister:   lister,
		recorder: recorder,
	}
}

// RegisterRoutes mounts the reservation endpoints. publicLimit throttles the
// anonymous POST and may be nil.
func (rc *ReservationsController) RegisterRoutes(api *gin.RouterGroup, g Guards, publicLimit gin.HandlerFunc) {
	create := []gin.HandlerFunc{rc.CreateReservation}
	if publicLimit != nil {
		create = append([]gin.HandlerFunc{publicLimit}, create...)
	}
	api.POST("/reservations", create...)
	api.GET("/reservations/availability", rc.Availability)
	api.GET("/reservations/stats", g.Staff, rc.Stats)
	api.GET("/reservations", g.Auth, rc.ListReservations)
	api.GET("/reservations/:id", g.Auth, rc.GetReservation)
	api.PUT("/reservations/:id/status", g.Admin, rc.UpdateStatus)
}

type CreateReservationRequest struct {
	BookID       uint          `json:"book_id" binding:"required"`
	VisitorName  string        `json:"visitor_name" binding:"required,max=200"`
	VisitorEmail string        `json:"visitor_email" binding:"required,email,max=255"`
	VisitorPhone string        `json:"visitor_phone" binding:"omitempty,max=32"`
	DesiredDate  string        `json:"desired_date" binding:"required,isodate"`
	Slot         entities.Slot `json:"slot" binding:"required,slot"`
	Comment      string        `json:"comment" binding:"omitempty,max=2000"`
}

type CreateReservationResponse struct {
	ReservationID     uint                       `json:"reservation_id"`
	ReservationNumber string                     `json:"reservation_number"`
	Status            entities.ReservationStatus `json:"status"`
}

type UpdateStatusRequest struct {
	Status    entities.ReservationStatus `json:"status" binding:"required,oneof=validated rejected completed cancelled"`
	AdminNote *string                    `json:"admin_note" binding:"omitempty,max=2000"`
}

// CreateReservation handles POST /api/reservations
func (rc *ReservationsController) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := rc.admitter.Admit(c.Request.Context(), reservations.Request{
		BookID:       req.BookID,
		VisitorName:  strings.TrimSpace(req.VisitorName),
		VisitorEmail: strings.TrimSpace(req.VisitorEmail),
		VisitorPhone: strings.TrimSpace(req.VisitorPhone),
		DesiredDate:  req.DesiredDate,
		Slot:         req.Slot,
		Comment:      req.Comment,
	})
	if err != nil {
		respondReservationError(c, err)
		return
	}

	recordActivity(c, rc.recorder, activity.Entry{
		Type:        entities.ActivityReservation,
		Action:      "reservation_create",
		Description: fmt.Sprintf("Reservation %s for book %d on %s (%s)", res.ReservationNumber, res.BookID, res.DesiredDate, res.Slot),
		EntityType:  "reservation",
		EntityID:    idPtr(res.ID),
	})

	respondCreated(c, CreateReservationResponse{
		ReservationID:     res.ID,
		ReservationNumber: res.ReservationNumber,
		Status:            res.Status,
	})
}

// ListReservations handles GET /api/reservations. Callers without staff
// privileges only see reservations made with their own email.
func (rc *ReservationsController) ListReservations(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}
	bookID, ok := optionalQueryID(c, "book_id")
	if !ok {
		return
	}
	filter := dbreservations.Filter{
		Status:   entities.ReservationStatus(c.Query("status")),
		BookID:   bookID,
		Slot:     entities.Slot(c.Query("slot")),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Query:    c.Query("q"),
		Email:    c.Query("email"),
		Limit:    limit,
		Offset:   offset,
	}
	if filter.Slot != "" && !filter.Slot.Valid() {
		respondBadRequest(c, "invalid slot")
		return
	}

	identity := auth.GetIdentity(c)
	if !identity.IsPrivileged() {
		if identity == nil || identity.Email == "" {
			c.JSON(http.StatusOK, newPaginated([]entities.Reservation{}, 0, limit, offset))
			return
		}
		filter.Email = identity.Email
	}

	list, total, err := rc.lister.List(filter)
	if err != nil {
		respondInternalError(c, err, "list reservations")
		return
	}
	c.JSON(http.StatusOK, newPaginated(list, total, limit, offset))
}

// GetReservation handles GET /api/reservations/:id. Another visitor's
// reservation is reported as not found.
func (rc *ReservationsController) GetReservation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	res, err := rc.manager.Get(c.Request.Context(), id)
	if err != nil {
		respondReservationError(c, err)
		return
	}
	if !canSee(auth.GetIdentity(c), res) {
		respondError(c, http.StatusNotFound, string(reservations.CodeNotFound), fmt.Sprintf("reservation %d not found", id))
		return
	}
	c.JSON(http.StatusOK, res)
}

func canSee(identity *auth.Identity, res *entities.Reservation) bool {
	if identity.IsPrivileged() {
		return true
	}
	return identity != nil && identity.Email != "" && strings.EqualFold(identity.Email, res.VisitorEmail)
}

// UpdateStatus handles PUT /api/reservations/:id/status
func (rc *ReservationsController) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := rc.manager.UpdateStatus(c.Request.Context(), id, reservations.StatusChange{
		Status:    req.Status,
		AdminNote: req.AdminNote,
		ActorID:   auth.ActorID(c),
	})
	if err != nil {
		respondReservationError(c, err)
		return
	}

	recordActivity(c, rc.recorder, activity.Entry{
		Type:        entities.ActivityReservation,
		Action:      "reservation_status",
		Description: fmt.Sprintf("Reservation %s set to %s", res.ReservationNumber, res.Status),
		EntityType:  "reservation",
		EntityID:    idPtr(res.ID),
		Metadata:    map[string]any{"status": res.Status},
	})
	c.JSON(http.StatusOK, res)
}

// Availability handles GET /api/reservations/availability?book_id=&date=
func (rc *ReservationsController) Availability(c *gin.Context) {
	bookID, ok := parseQueryID(c, "book_id")
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		respondBadRequest(c, "date is required")
		return
	}
	availability, err := rc.admitter.Availability(c.Request.Context(), bookID, date)
	if err != nil {
		respondReservationError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

// Stats handles GET /api/reservations/stats
func (rc *ReservationsController) Stats(c *gin.Context) {
	counts, err := rc.lister.CountByStatus()
	if err != nil {
		respondInternalError(c, err, "reservation stats")
		return
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, gin.H{"by_status": counts, "total": total})
}
