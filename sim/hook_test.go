package sim

import (
	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		hookable *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hookable = &HookableBase{}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should invoke hooks in registration order", func() {
		hook1 := NewMockHook(mockCtrl)
		hook2 := NewMockHook(mockCtrl)
		hookable.AcceptHook(hook1)
		hookable.AcceptHook(hook2)

		ctx := HookCtx{Pos: &HookPos{Name: "Test"}, Item: 1}
		gomock.InOrder(
			hook1.EXPECT().Func(ctx),
			hook2.EXPECT().Func(ctx),
		)

		hookable.InvokeHook(ctx)

		Expect(hookable.NumHooks()).To(Equal(2))
		Expect(hookable.Hooks()).To(HaveLen(2))
	})

	It("should panic if the same hook is added twice", func() {
		hook := NewMockHook(mockCtrl)
		hookable.AcceptHook(hook)

		Expect(func() { hookable.AcceptHook(hook) }).To(Panic())
	})
})
