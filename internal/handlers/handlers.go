package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/events"
	"github.com/pryme0/vyb-q-admin/internal/logger"
	"github.com/pryme0/vyb-q-admin/internal/notifier"
)

var (
	publisher events.Publisher  = events.Nop{}
	notify    notifier.Notifier = notifier.Nop{}
	uploadDir string            = "uploads"
	now       func() time.Time  = time.Now
)

const backgroundTimeout = 30 * time.Second

func SetPublisher(p events.Publisher) {
	publisher = p
}

func SetNotifier(n notifier.Notifier) {
	notify = n
}

func SetUploadDir(dir string) {
	uploadDir = dir
}

// SetClock replaces the time source used for discount windows and
// timestamps. Tests pin it; nil restores the wall clock.
func SetClock(f func() time.Time) {
	if f == nil {
		f = time.Now
	}
	now = f
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// respondDBError maps a lookup failure to 404 for missing rows and 500 for
// everything else.
func respondDBError(c *gin.Context, err error, entity string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, entity+" not found")
		return
	}
	respondError(c, http.StatusInternalServerError, err.Error())
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid %s", param))
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, key string) (uint, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s", key)
	}
	return uint(v), true, nil
}

// emit publishes an event. Delivery problems are logged, never returned to
// the caller.
func emit(ctx context.Context, eventType string, payload any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := publisher.Publish(ctx, events.New(eventType, payload)); err != nil {
		logger.L().Warn("event publish failed", zap.String("type", eventType), zap.Error(err))
	}
}

// background runs a best-effort side effect such as a notification after
// the response has been decided.
func background(name string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.L().Warn("background task failed", zap.String("task", name), zap.Error(err))
		}
	}()
}
