//go:build integration

package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/slot-service/pkg/auth"
	"github.com/Eursukkul/booking-microservice/slot-service/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "slot_test_db"),
	)

	var err error
	testDB, err = database.NewPostgresDB(dsn)
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	// Drop and recreate tables for clean state
	testDB.Exec("DROP TABLE IF EXISTS notifications")
	testDB.Exec("DROP TABLE IF EXISTS bookings")
	if err := database.Migrate(testDB); err != nil {
		log.Fatalf("failed to migrate test database: %v", err)
	}

	code := m.Run()

	testDB.Exec("DROP TABLE IF EXISTS notifications")
	testDB.Exec("DROP TABLE IF EXISTS bookings")
	os.Exit(code)
}

func cleanTables() {
	testDB.Exec("DELETE FROM notifications")
	testDB.Exec("DELETE FROM bookings")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newPostgresService() BookingService {
	return NewBookingService(
		repository.NewBookingRepository(testDB),
		repository.NewNotificationRepository(testDB),
		nil, nil, zap.NewNop(),
	)
}

// 20 operators race to decide one booking: exactly one wins and exactly one
// notification is written.
func TestPostgres_ConcurrentDecisions(t *testing.T) {
	cleanTables()
	svc := newPostgresService()
	b, err := svc.SubmitBooking(context.Background(), farmer, tomatoes())
	require.NoError(t, err)

	const operators = 20
	var wg sync.WaitGroup
	errs := make(chan error, operators)
	wg.Add(operators)
	for i := 0; i < operators; i++ {
		go func(i int) {
			defer wg.Done()
			op := auth.Principal{ID: fmt.Sprintf("wm-%02d", i), Role: auth.RoleWarehouseManager}
			var err error
			if i%2 == 0 {
				_, err = svc.AcceptBooking(context.Background(), op, b.ID)
			} else {
				_, err = svc.RejectBooking(context.Background(), op, b.ID)
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrNotPending)
	}
	assert.Equal(t, 1, wins)

	var notifs int64
	require.NoError(t, testDB.Model(&models.Notification{}).Count(&notifs).Error)
	assert.Equal(t, int64(1), notifs)
}

func TestPostgres_DeleteKeepsNotifications(t *testing.T) {
	cleanTables()
	svc := newPostgresService()
	b, err := svc.SubmitBooking(context.Background(), farmer, tomatoes())
	require.NoError(t, err)
	_, err = svc.RejectBooking(context.Background(), operator, b.ID)
	require.NoError(t, err)

	c, err := svc.RequestDeletion(context.Background(), operator, b.ID)
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmDeletion(context.Background(), operator, b.ID, c.Token))

	var bookings, notifs int64
	require.NoError(t, testDB.Model(&models.Booking{}).Count(&bookings).Error)
	require.NoError(t, testDB.Model(&models.Notification{}).Where("user_id = ?", farmer.ID).Count(&notifs).Error)
	assert.Equal(t, int64(0), bookings)
	assert.Equal(t, int64(2), notifs)
}
