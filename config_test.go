package tdlchar

import "testing"

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Capacity != 256 {
		t.Errorf("Expected Capacity 256, got %d", config.Capacity)
	}

	if config.Logger != nil {
		t.Error("Expected diagnostics disabled by default")
	}
}

func TestWithCapacity(t *testing.T) {
	config := DefaultConfig()

	err := WithCapacity(512)(&config)
	if err != nil {
		t.Errorf("WithCapacity failed: %v", err)
	}
	if config.Capacity != 512 {
		t.Errorf("Expected Capacity 512, got %d", config.Capacity)
	}
}

func TestInvalidCapacity(t *testing.T) {
	tests := []int{1, 0, -256}

	for _, capacity := range tests {
		config := DefaultConfig()
		err := WithCapacity(capacity)(&config)
		if err == nil {
			t.Errorf("Expected error for capacity %d", capacity)
		}
		if err != ErrInvalidConfig {
			t.Errorf("Expected ErrInvalidConfig for %d, got %v", capacity, err)
		}
	}
}

func TestNewDeviceAppliesOptions(t *testing.T) {
	dev, err := NewDevice(WithCapacity(64))
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	defer dev.Close()

	if dev.Capacity() != 64 {
		t.Errorf("Expected Capacity 64, got %d", dev.Capacity())
	}
}

func TestNewDeviceRejectsBadOption(t *testing.T) {
	_, err := NewDevice(WithCapacity(0))
	if err != ErrInvalidConfig {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
