package kv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// NATS KV 桶没有按键过期，带 TTL 的值写成 "PHTTL1:" + {"v":..,"e":..} 的信封.
var ttlPrefix = []byte("PHTTL1:")

type ttlEnvelope struct {
	Value    []byte `json:"v"`
	Deadline int64  `json:"e"` // unix 秒
}

// sealTTL 在 ttl>0 时把值包进信封，否则原样返回.
func sealTTL(value []byte, ttl time.Duration, now time.Time) ([]byte, error) {
	if ttl <= 0 {
		return value, nil
	}

	b, err := sonic.Marshal(ttlEnvelope{Value: value, Deadline: now.Add(ttl).Unix()})
	if err != nil {
		return nil, fmt.Errorf("marshal ttl envelope: %w", err)
	}

	return append(bytes.Clone(ttlPrefix), b...), nil
}

// openTTL 拆开信封，live 为 false 表示已过期.
// 不带前缀的值视为永不过期.
func openTTL(raw []byte, now time.Time) (value []byte, live bool, err error) {
	body, ok := bytes.CutPrefix(raw, ttlPrefix)
	if !ok {
		return raw, true, nil
	}

	var env ttlEnvelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return nil, false, fmt.Errorf("unmarshal ttl envelope: %w", err)
	}

	if now.Unix() >= env.Deadline {
		return nil, false, nil
	}

	return env.Value, true, nil
}
