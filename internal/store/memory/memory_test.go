package memory

import (
	"testing"
	"time"

	"github.com/goliatone/go-formdispatch/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, New(storetest.FixedClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))))
}
