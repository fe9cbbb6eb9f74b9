// Package adapters wires the scoring engine's collaborator ports to their
// concrete backends: Redis for reputation and duplicate lookups, Kafka for
// score change notifications.
package adapters

import (
	"context"
	"fmt"

	platformredis "nexolend/internal/platform/redis"
	"nexolend/internal/scoring/ports"
)

// Redis key layout for reputation signals. The fraud operations team loads
// these sets out of band.
const (
	keyIPBlacklist = "reputation:ip:blacklist"
	keyIPVPN       = "reputation:ip:vpn"
	keyIPKnown     = "reputation:ip:known"

	keyDeviceFraud = "reputation:device:fraud"
	keyDeviceKnown = "reputation:device:known"
)

// RedisReputation answers IP and device trust lookups from Redis sets.
type RedisReputation struct {
	client *platformredis.Client
}

// NewRedisReputation creates the reputation adapter.
func NewRedisReputation(client *platformredis.Client) *RedisReputation {
	return &RedisReputation{client: client}
}

// CheckIP reports the categorical reputation of an address. An address on
// no set at all is unknown and scores at its default.
func (r *RedisReputation) CheckIP(ctx context.Context, ip string) (ports.IPReputation, error) {
	pipe := r.client.Pipeline()
	blacklisted := pipe.SIsMember(ctx, keyIPBlacklist, ip)
	vpn := pipe.SIsMember(ctx, keyIPVPN, ip)
	known := pipe.SIsMember(ctx, keyIPKnown, ip)
	if _, err := pipe.Exec(ctx); err != nil {
		return ports.IPReputation{}, fmt.Errorf("ip reputation lookup: %w", err)
	}

	rep := ports.IPReputation{
		Blacklisted: blacklisted.Val(),
		VPN:         vpn.Val(),
	}
	rep.Known = rep.Blacklisted || rep.VPN || known.Val()
	return rep, nil
}

// CheckDevice reports the categorical reputation of a device fingerprint.
func (r *RedisReputation) CheckDevice(ctx context.Context, fingerprint string) (ports.DeviceReputation, error) {
	pipe := r.client.Pipeline()
	fraud := pipe.SIsMember(ctx, keyDeviceFraud, fingerprint)
	known := pipe.SIsMember(ctx, keyDeviceKnown, fingerprint)
	if _, err := pipe.Exec(ctx); err != nil {
		return ports.DeviceReputation{}, fmt.Errorf("device reputation lookup: %w", err)
	}

	rep := ports.DeviceReputation{FraudAssociated: fraud.Val()}
	rep.Known = rep.FraudAssociated || known.Val()
	return rep, nil
}
