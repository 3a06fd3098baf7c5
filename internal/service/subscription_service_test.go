package service

import (
	"context"
	"testing"
	"time"

	"certgo_backend/internal/model"
	"certgo_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	price := 9.9
	_, err := env.subscription.CreatePlan(ctx, PlanInput{Name: "Pro", PricePerMonth: &price})
	require.NoError(t, err)
	inactive := false
	_, err = env.subscription.CreatePlan(ctx, PlanInput{Name: "Legacy", IsActive: &inactive})
	require.NoError(t, err)

	_, err = env.subscription.CreatePlan(ctx, PlanInput{Name: "Pro"})
	assert.ErrorIs(t, err, util.ErrDuplicatePlan)

	negative := -1.0
	_, err = env.subscription.CreatePlan(ctx, PlanInput{Name: "Neg", PricePerMonth: &negative})
	assert.ErrorIs(t, err, util.ErrValidation)

	active, err := env.subscription.ListPlans(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := env.subscription.ListPlans(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSubscribeReplacesCurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@x.com")

	limit := 30
	basic, err := env.subscription.CreatePlan(ctx, PlanInput{Name: "Basic", SummaryChatLimitValue: &limit})
	require.NoError(t, err)
	pro, err := env.subscription.CreatePlan(ctx, PlanInput{Name: "Pro"})
	require.NoError(t, err)

	_, err = env.subscription.CurrentSubscription(ctx, u)
	assert.ErrorIs(t, err, util.ErrNotFound)

	trial, err := env.subscription.Subscribe(ctx, u, SubscribeInput{PlanID: basic.ID, Trial: true})
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionTrial, trial.Status)
	assert.Equal(t, 30, trial.CreditsRemaining)
	assert.Nil(t, trial.LastBillingDate)

	paid, err := env.subscription.Subscribe(ctx, u, SubscribeInput{PlanID: pro.ID, Months: 3})
	require.NoError(t, err)

	current, err := env.subscription.CurrentSubscription(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, paid.ID, current.ID)
	require.NotNil(t, current.Plan)
	assert.Equal(t, "Pro", current.Plan.Name)

	var cancelled int64
	require.NoError(t, env.db.Model(&model.UserSubscription{}).
		Where("status = ?", model.SubscriptionCancelled).Count(&cancelled).Error)
	assert.EqualValues(t, 1, cancelled)

	require.NoError(t, env.subscription.CancelSubscription(ctx, u))
	assert.ErrorIs(t, env.subscription.CancelSubscription(ctx, u), util.ErrNotFound)

	_, err = env.subscription.Subscribe(ctx, u, SubscribeInput{PlanID: "missing"})
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestExpireDue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@x.com")
	plan, err := env.subscription.CreatePlan(ctx, PlanInput{Name: "Basic"})
	require.NoError(t, err)
	_, err = env.subscription.Subscribe(ctx, u, SubscribeInput{PlanID: plan.ID, Trial: true})
	require.NoError(t, err)

	n, err := env.subscription.ExpireDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = env.subscription.ExpireDue(ctx, time.Now().Add(15*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = env.subscription.CurrentSubscription(ctx, u)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
