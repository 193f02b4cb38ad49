package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		page, size       int
		wantFrom, wantLn int
	}{
		{page: 1, size: 20, wantFrom: 0, wantLn: 20},
		{page: 3, size: 20, wantFrom: 40, wantLn: 20},
		{page: 0, size: 0, wantFrom: 0, wantLn: DefaultPageSize},
		{page: 2, size: 500, wantFrom: DefaultPageSize, wantLn: DefaultPageSize},
		{page: 922337203685477580, size: 20, wantFrom: (MaxPage - 1) * 20, wantLn: 20},
	}
	for _, tc := range cases {
		from, limit := Calculate(tc.page, tc.size)
		assert.Equal(t, tc.wantFrom, from)
		assert.Equal(t, tc.wantLn, limit)
	}
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("-4"))
	assert.Equal(t, 7, ParsePage("7"))
	assert.Equal(t, MaxPage, ParsePage("922337203685477580"))
	assert.Equal(t, 1, ParsePage("99999999999999999999999"))
}
