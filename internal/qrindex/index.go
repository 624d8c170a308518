package qrindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"shopping-matrix/internal/domain"
	"shopping-matrix/internal/mirror"
)

const (
	keyPrefix  = "qr:"
	DefaultTTL = 24 * time.Hour
)

// Index maps pickup QR codes to order snapshots so staff can scan a code
// without knowing the shopper's session.
type Index struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *log.Logger) *Index {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Index{client: client, ttl: ttl, logger: logger}
}

func key(code string) string { return keyPrefix + code }

// Put stores the order under its QR code. Codes are only unique within a
// session, so the first order to claim a code keeps it; later snapshots of that
// same order replace it and a different order is left to the session scan.
func (i *Index) Put(ctx context.Context, o domain.Order) error {
	if o.QRCode == "" {
		return fmt.Errorf("order %s has no qr code", o.ID)
	}
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", o.ID, err)
	}
	claimed, err := i.client.SetNX(ctx, key(o.QRCode), data, i.ttl).Result()
	if err != nil {
		i.logger.Printf("qrindex: put code=%s order=%s error=%v", o.QRCode, o.ID, err)
		return err
	}
	if claimed {
		return nil
	}

	existing, err := i.Lookup(ctx, o.QRCode)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return err
	case existing.SessionID != o.SessionID || existing.ID != o.ID:
		i.logger.Printf("qrindex: collision code=%s held by session=%s order=%s, skipping session=%s order=%s",
			o.QRCode, existing.SessionID, existing.ID, o.SessionID, o.ID)
		return nil
	}
	if err := i.client.Set(ctx, key(o.QRCode), data, i.ttl).Err(); err != nil {
		i.logger.Printf("qrindex: put code=%s order=%s error=%v", o.QRCode, o.ID, err)
		return err
	}
	return nil
}

// Lookup returns the latest snapshot for the code or domain.ErrNotFound.
func (i *Index) Lookup(ctx context.Context, code string) (domain.Order, error) {
	data, err := i.client.Get(ctx, key(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Order{}, domain.ErrNotFound
		}
		i.logger.Printf("qrindex: lookup code=%s error=%v", code, err)
		return domain.Order{}, err
	}
	var o domain.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return domain.Order{}, fmt.Errorf("decode order for code %s: %w", code, err)
	}
	return o, nil
}

func (i *Index) Ping(ctx context.Context) error {
	return i.client.Ping(ctx).Err()
}

func (i *Index) Name() string { return "redis-qr" }

// Apply keeps the index current with order events; stock events are ignored.
func (i *Index) Apply(ctx context.Context, ev mirror.Event) error {
	if ev.Order == nil {
		return nil
	}
	switch ev.Kind {
	case mirror.KindOrderCreated, mirror.KindOrderStatus:
		return i.Put(ctx, *ev.Order)
	}
	return nil
}
