package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzPtr_Int64(f *testing.F) {
	f.Add(int64(0))
	f.Add(int64(1))
	f.Add(int64(500))
	f.Add(int64(-1))
	f.Fuzz(func(t *testing.T, i int64) {
		ptr := Ptr(i)
		assert.Equal(t, ptr, &i)
	})
}

func FuzzPtr_String(f *testing.F) {
	f.Add("")
	f.Add("robot")
	f.Add("all_users")
	f.Fuzz(func(t *testing.T, s string) {
		ptr := Ptr(s)
		assert.Equal(t, ptr, &s)
	})
}

func TestPtrGet(t *testing.T) {
	assert.Equal(t, int64(42), PtrGet(Ptr(int64(42))))
	assert.Equal(t, "", PtrGet[string](nil))
	assert.Equal(t, int64(0), PtrGet[int64](nil))
}
