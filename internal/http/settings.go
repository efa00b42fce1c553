package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/auth"
	"github.com/mrlokans/readingcenter/internal/database/settings"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// SettingsStore reads and writes system parameters.
type SettingsStore interface {
	List() ([]entities.SystemParameter, error)
	Apply(update settings.Update) ([]string, error)
	Public() (*settings.Public, error)
}

// SettingsRecorder records parameter changes.
type SettingsRecorder interface {
	LogSettings(userID *uint, keys []string)
}

type SettingsController struct {
	store    SettingsStore
	recorder SettingsRecorder
}

func NewSettingsController(store SettingsStore, recorder SettingsRecorder) *SettingsController {
	return &SettingsController{store: store, recorder: recorder}
}

func (sc *SettingsController) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	api.GET("/settings/public", sc.GetPublicSettings)
	api.GET("/settings", g.Staff, sc.GetSettings)
	api.PUT("/settings", g.Admin, sc.UpdateSettings)
}

// SettingView is a parameter with its value converted to its declared type.
type SettingView struct {
	Key         string                 `json:"key"`
	Value       any                    `json:"value"`
	Type        entities.ParameterType `json:"type"`
	Description string                 `json:"description,omitempty"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// UpdateSettingsRequest names every editable parameter. Omitted fields are
// left unchanged; unknown keys are rejected.
type UpdateSettingsRequest struct {
	OpenSunday    *bool `json:"open_sunday"`
	OpenMonday    *bool `json:"open_monday"`
	OpenTuesday   *bool `json:"open_tuesday"`
	OpenWednesday *bool `json:"open_wednesday"`
	OpenThursday  *bool `json:"open_thursday"`
	OpenFriday    *bool `json:"open_friday"`
	OpenSaturday  *bool `json:"open_saturday"`

	MaxReservationsPerDay  *int `json:"max_reservations_per_day" binding:"omitempty,min=0"`
	MaxReservationsPerSlot *int `json:"max_reservations_per_slot" binding:"omitempty,min=0"`

	AdminNotificationEmail *string `json:"admin_notification_email" binding:"omitempty,email"`
	CenterName             *string `json:"center_name" binding:"omitempty,min=1,max=200"`
}

func (r UpdateSettingsRequest) toUpdate() settings.Update {
	return settings.Update{
		OpenSunday:             r.OpenSunday,
		OpenMonday:             r.OpenMonday,
		OpenTuesday:            r.OpenTuesday,
		OpenWednesday:          r.OpenWednesday,
		OpenThursday:           r.OpenThursday,
		OpenFriday:             r.OpenFriday,
		OpenSaturday:           r.OpenSaturday,
		MaxReservationsPerDay:  r.MaxReservationsPerDay,
		MaxReservationsPerSlot: r.MaxReservationsPerSlot,
		AdminNotificationEmail: r.AdminNotificationEmail,
		CenterName:             r.CenterName,
	}
}

// GetSettings handles GET /api/settings
func (sc *SettingsController) GetSettings(c *gin.Context) {
	params, err := sc.store.List()
	if err != nil {
		respondInternalError(c, err, "list settings")
		return
	}
	views := make([]SettingView, 0, len(params))
	for _, p := range params {
		value, err := settings.Typed(p)
		if err != nil {
			// Surface the raw text rather than failing the whole page
			value = p.Value
		}
		views = append(views, SettingView{
			Key:         p.Key,
			Value:       value,
			Type:        p.Type,
			Description: p.Description,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"settings": views})
}

// UpdateSettings handles PUT /api/settings
func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	keys, err := sc.store.Apply(req.toUpdate())
	if err != nil {
		respondInternalError(c, err, "update settings")
		return
	}
	if len(keys) > 0 && sc.recorder != nil {
		sc.recorder.LogSettings(auth.ActorID(c), keys)
	}
	c.JSON(http.StatusOK, gin.H{"updated": keys})
}

// GetPublicSettings handles GET /api/settings/public
func (sc *SettingsController) GetPublicSettings(c *gin.Context) {
	pub, err := sc.store.Public()
	if err != nil {
		respondInternalError(c, err, "public settings")
		return
	}
	c.JSON(http.StatusOK, pub)
}
