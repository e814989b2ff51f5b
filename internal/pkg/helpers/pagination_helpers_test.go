package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := map[string]int{
		"/qna":           1,
		"/qna?page=3":    3,
		"/qna?page=0":    1,
		"/qna?page=-4":   1,
		"/qna?page=abc":  1,
		"/qna?page=":     1,
		"/qna?page=2.5":  1,
		"/qna?page=1000": 1000,
	}
	for url, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", url, nil)
		assert.Equal(t, want, ParsePage(c), url)
	}
}

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(1, ListPageSize)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, uint64(30), limit)

	offset, limit = CalculateOffsetLimit(3, ListPageSize)
	assert.Equal(t, uint64(60), offset)
	assert.Equal(t, uint64(30), limit)

	offset, _ = CalculateOffsetLimit(-1, 0)
	assert.Equal(t, uint64(0), offset)
}

func TestNewPaginationInfo(t *testing.T) {
	p := NewPaginationInfo(61, 2, ListPageSize)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)
	assert.Equal(t, 1, p.PrevPage)
	assert.Equal(t, 3, p.NextPage)

	empty := NewPaginationInfo(0, 1, ListPageSize)
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}
