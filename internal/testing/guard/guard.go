package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("HIRELOOP_TEST_MODE") == "" {
			_ = os.Setenv("HIRELOOP_TEST_MODE", "1")
		}
	})
}
