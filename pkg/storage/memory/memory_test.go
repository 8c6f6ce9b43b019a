package memory

import (
	"testing"

	"github.com/authgate/authgate/pkg/storage/storetest"
)

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, NewStore())
}
