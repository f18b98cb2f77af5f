package testing

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// LoadWorkload returns an in-memory stream containing a workload script. Writes
// to the stream don't affect `script`.
func LoadWorkload(t *testing.T, script string) io.ReadWriteSeeker {
	require.NotEmpty(t, script, "workload script is empty")

	buffer := make([]byte, len(script))
	copy(buffer, script)
	return bytesextra.NewReadWriteSeeker(buffer)
}
