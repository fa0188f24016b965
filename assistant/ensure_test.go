package assistant_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/assistant"
	"github.com/effective-security/functic/cache"
	"github.com/effective-security/functic/mocks/mockassistant"
	"github.com/effective-security/functic/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func page(hasMore bool, list ...*assistant.Assistant) *tools.Pagination[*assistant.Assistant] {
	p := tools.NewPagination(list, func(a *assistant.Assistant) string { return a.ID })
	p.HasMore = hasMore
	return p
}

func TestEnsure(t *testing.T) {
	ctx := context.Background()
	notFound := errors.Mark(errors.New("404 Not Found"), assistant.ErrAssistantNotFound)

	helper := &assistant.Assistant{ID: "asst_123", Name: "helper", Model: "gpt-4o"}
	other := &assistant.Assistant{ID: "asst_456", Name: "other", Model: "gpt-4o"}

	t.Run("by id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mockassistant.NewMockAPI(ctrl)
		api.EXPECT().Get(ctx, "asst_123").Return(helper, nil)

		a, err := assistant.Ensure(ctx, api, "asst_123")
		require.NoError(t, err)
		assert.Same(t, helper, a)
	})

	t.Run("by id falls back to name", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mockassistant.NewMockAPI(ctrl)
		named := &assistant.Assistant{ID: "asst_789", Name: "asst_custom"}
		gomock.InOrder(
			api.EXPECT().Get(ctx, "asst_custom").Return(nil, notFound),
			api.EXPECT().List(ctx, "", 100).Return(page(false, other, named), nil),
		)

		a, err := assistant.Ensure(ctx, api, "asst_custom")
		require.NoError(t, err)
		assert.Same(t, named, a)
	})

	t.Run("by id error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mockassistant.NewMockAPI(ctrl)
		api.EXPECT().Get(ctx, "asst_123").Return(nil, errors.New("unauthorized"))

		_, err := assistant.Ensure(ctx, api, "asst_123")
		assert.EqualError(t, err, "unauthorized")
	})

	t.Run("by name paged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mockassistant.NewMockAPI(ctrl)
		gomock.InOrder(
			api.EXPECT().List(ctx, "", 100).Return(page(true, other), nil),
			api.EXPECT().List(ctx, "asst_456", 100).Return(page(false, helper), nil),
		)

		a, err := assistant.Ensure(ctx, api, " helper ")
		require.NoError(t, err)
		assert.Same(t, helper, a)
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mockassistant.NewMockAPI(ctrl)
		api.EXPECT().List(ctx, "", 100).Return(page(false, other), nil)

		_, err := assistant.Ensure(ctx, api, "helper")
		require.Error(t, err)
		assert.True(t, errors.Is(err, assistant.ErrAssistantNotFound))
		assert.EqualError(t, err, `assistant "helper": assistant not found`)

		_, err = assistant.Ensure(ctx, api, " ")
		assert.EqualError(t, err, "assistant ID or name is required")
	})

	t.Run("list error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mockassistant.NewMockAPI(ctrl)
		api.EXPECT().List(ctx, "", 100).Return(nil, errors.New("failed to list assistants"))

		_, err := assistant.Ensure(ctx, api, "helper")
		assert.EqualError(t, err, "failed to list assistants")
	})

	t.Run("create", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mockassistant.NewMockAPI(ctrl)
		req := &assistant.CreateRequest{
			Model: "gpt-4o",
			Tools: assistant.FunctionTools(tools.FunctionDefinition{Name: "get_currencies"}),
		}
		created := &assistant.Assistant{ID: "asst_new", Name: "helper", Model: "gpt-4o"}
		gomock.InOrder(
			api.EXPECT().List(ctx, "", 100).Return(page(false), nil),
			api.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
				func(_ context.Context, r *assistant.CreateRequest) (*assistant.Assistant, error) {
					assert.Equal(t, "helper", r.Name)
					assert.Equal(t, "gpt-4o", r.Model)
					require.Len(t, r.Tools, 1)
					assert.Equal(t, "get_currencies", r.Tools[0].Function.Name)
					return created, nil
				}),
		)

		a, err := assistant.Ensure(ctx, api, "helper", assistant.WithCreate(req))
		require.NoError(t, err)
		assert.Same(t, created, a)
		// the request is not modified
		assert.Empty(t, req.Name)
		assert.Equal(t, []string{"get_currencies"}, created.FunctionNames())
	})

	t.Run("cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mockassistant.NewMockAPI(ctrl)
		c := cache.NewMemory()
		defer c.Close()

		api.EXPECT().Get(ctx, "asst_123").Return(helper, nil).Times(2)

		a, err := assistant.Ensure(ctx, api, "asst_123", assistant.WithCache(c), assistant.WithExpire(time.Minute))
		require.NoError(t, err)
		assert.Same(t, helper, a)

		// from cache
		a, err = assistant.Ensure(ctx, api, "asst_123", assistant.WithCache(c))
		require.NoError(t, err)
		assert.Equal(t, helper, a)
		assert.NotSame(t, helper, a)

		cached, err := cache.GetJSON[assistant.Assistant](ctx, c, assistant.CacheKey("asst_123"))
		require.NoError(t, err)
		assert.Equal(t, "helper", cached.Name)

		// force skips the cache
		a, err = assistant.Ensure(ctx, api, "asst_123", assistant.WithCache(c), assistant.WithForce(true))
		require.NoError(t, err)
		assert.Same(t, helper, a)
	})
}
