package config

import "testing"

func TestRedisOptionsAddressPrecedence(t *testing.T) {
	t.Setenv("REDIS_ADDR", "fallback:6400")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6390")

	opts := redisOptions()
	if opts.Addr != "cache.internal:6390" {
		t.Fatalf("addr = %q, want host/port to win over REDIS_ADDR", opts.Addr)
	}

	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	if opts := redisOptions(); opts.Addr != "fallback:6400" {
		t.Fatalf("addr = %q, want REDIS_ADDR fallback", opts.Addr)
	}
}

func TestRedisOptionsTLSVerifiesByDefault(t *testing.T) {
	t.Setenv("REDIS_TLS", "")
	t.Setenv("REDIS_TLS_SKIP_VERIFY", "")

	opts := redisOptions()
	if opts.TLSConfig != nil {
		t.Fatalf("TLS enabled without REDIS_TLS")
	}

	t.Setenv("REDIS_TLS", "true")
	opts = redisOptions()
	if opts.TLSConfig == nil {
		t.Fatalf("REDIS_TLS did not enable TLS")
	}
	if opts.TLSConfig.InsecureSkipVerify {
		t.Fatalf("certificate verification skipped without opting in")
	}

	t.Setenv("REDIS_TLS_SKIP_VERIFY", "true")
	opts = redisOptions()
	if opts.TLSConfig == nil || !opts.TLSConfig.InsecureSkipVerify {
		t.Fatalf("REDIS_TLS_SKIP_VERIFY not honored")
	}
}
