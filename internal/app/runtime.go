package app

import (
	"os"
	"sync"
)

var inTestMode = sync.OnceValue(func() bool {
	return os.Getenv("COMERCIA_TEST_MODE") == "1"
})

// InTestMode reports whether mains should skip starting servers and external
// connections. Set COMERCIA_TEST_MODE=1 to enable it.
func InTestMode() bool {
	return inTestMode()
}
