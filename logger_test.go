package lld

import (
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	if Logger() == nil {
		t.Fatal("default logger is nil")
	}

	custom := zap.NewExample()
	SetLogger(custom)
	if Logger() != custom {
		t.Error("SetLogger did not install the logger")
	}

	SetLogger(nil)
	if Logger() == nil || Logger() == custom {
		t.Error("SetLogger(nil) should restore the no-op logger")
	}
}

func TestSetLogger_Concurrent(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetLogger(zap.NewNop())
		}()
		go func() {
			defer wg.Done()
			if Logger() == nil {
				t.Error("Logger returned nil")
			}
		}()
	}
	wg.Wait()
}
