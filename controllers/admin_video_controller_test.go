package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidora/utils"
)

func TestCreateVideoRequestTierValidation(t *testing.T) {
	base := CreateVideoRequest{Title: "Intro", CategoryID: 1}

	for _, tier := range []string{"basic", "premium"} {
		req := base
		req.Tier = tier
		assert.NoError(t, utils.ValidateStruct(req), tier)
	}

	// vip is a plan tier; videos top out at premium
	req := base
	req.Tier = "vip"
	require.Error(t, utils.ValidateStruct(req))
}

func TestUpdateVideoRequestTierValidation(t *testing.T) {
	tier := "vip"
	require.Error(t, utils.ValidateStruct(UpdateVideoRequest{Tier: &tier}))

	tier = "premium"
	assert.NoError(t, utils.ValidateStruct(UpdateVideoRequest{Tier: &tier}))
}
