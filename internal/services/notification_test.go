package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"electric-service/pkg/constants"
)

func TestStatusTitlesCoverAllStatuses(t *testing.T) {
	assert.Len(t, statusTitles, len(constants.OrderStatuses))
	for _, status := range constants.OrderStatuses {
		assert.NotEmpty(t, statusTitles[status], "status=%s", status)
	}
}
