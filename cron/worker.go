package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"istishara/config"
	"istishara/services/booking"
)

const TypePaymentExpire = "payment:expire"

type paymentExpirePayload struct {
	BookingID string `json:"bookingId"`
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// ExpiryScheduler enqueues a delayed payment-expiry check per booking.
// The handler re-reads the booking, so duplicate or late deliveries are
// harmless.
type ExpiryScheduler struct {
	client *asynq.Client
}

func NewExpiryScheduler() *ExpiryScheduler {
	return &ExpiryScheduler{client: asynq.NewClient(redisOpts())}
}

func (s *ExpiryScheduler) ScheduleExpiry(ctx context.Context, bookingID string, delay time.Duration) error {
	payload, err := json.Marshal(paymentExpirePayload{BookingID: bookingID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypePaymentExpire, payload)
	_, err = s.client.EnqueueContext(ctx, task, asynq.ProcessIn(delay), asynq.MaxRetry(3))
	return err
}

func (s *ExpiryScheduler) Close() error {
	return s.client.Close()
}

// InitExpiryWorker runs the async worker in background. It consumes the
// delayed payment-expiry tasks and runs a periodic sweep as a safety
// net for tasks lost to Redis restarts.
func InitExpiryWorker(bookingSvc booking.BookingService) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePaymentExpire, handlePaymentExpire(bookingSvc))

	go monitorRedisConnection()
	go sweepLoop(bookingSvc)

	go func() {
		log.Println("[ExpiryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handlePaymentExpire(bookingSvc booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p paymentExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryHandler] invalid payload: %v", err)
			return err
		}

		if err := bookingSvc.ExpirePendingPayment(ctx, p.BookingID); err != nil {
			log.Printf("[ExpiryHandler] failed to expire booking %s: %v", p.BookingID, err)
			return err
		}
		return nil
	}
}

func sweepLoop(bookingSvc booking.BookingService) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		n, err := bookingSvc.SweepOverduePayments(ctx)
		cancel()
		if err != nil {
			log.Printf("[ExpirySweep] sweep failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("[ExpirySweep] expired %d overdue bookings", n)
		}
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ExpiryWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
