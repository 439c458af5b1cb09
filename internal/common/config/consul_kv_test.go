package config

import "testing"

func TestLoadConfigFromConsulAddrRejectsBadInput(t *testing.T) {
	if _, err := LoadConfigFromConsulAddr("not-an-addr", "config/fleet-service"); err == nil {
		t.Fatalf("expected error for addr without port")
	}
	if _, err := LoadConfigFromConsulAddr("localhost:notaport", "config/fleet-service"); err == nil {
		t.Fatalf("expected error for non-numeric port")
	}
	if _, err := LoadConfigFromConsulAddr("localhost:8500", ""); err == nil {
		t.Fatalf("expected error for empty kv key")
	}
}
