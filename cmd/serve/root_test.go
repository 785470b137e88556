package serve

import (
	"testing"

	"github.com/ValentinKolb/dPool/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServices(t *testing.T) {
	services, err := parseServices("100=compose-review, 200 = compose-review")
	require.NoError(t, err)
	assert.Equal(t, []common.ServerService{
		{ServiceID: 100, Type: common.ServiceTypeComposeReview},
		{ServiceID: 200, Type: common.ServiceTypeComposeReview},
	}, services)
}

func TestParseServicesInvalid(t *testing.T) {
	for _, value := range []string{"", "100", "x=compose-review", "100=lstore", "100=compose-review=1"} {
		t.Run(value, func(t *testing.T) {
			_, err := parseServices(value)
			assert.Error(t, err)
		})
	}
}
