package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GlebRadaev/memberhub/internal/commission"
	"github.com/GlebRadaev/memberhub/internal/config"
	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/reconcile"
	"github.com/GlebRadaev/memberhub/internal/service"
	"github.com/stretchr/testify/suite"
	gomock "go.uber.org/mock/gomock"
)

type ApplicationSuite struct {
	suite.Suite
	app *Application
}

func TestApplication(t *testing.T) {
	suite.Run(t, &ApplicationSuite{})
}

func (s *ApplicationSuite) SetupTest() {
	s.app = New()
}

func (s *ApplicationSuite) TestWait() {
	ctx, cancel := context.WithCancel(context.Background())

	s.app.errCh = make(chan error)
	go func() {
		s.app.errCh <- fmt.Errorf("mock error")
	}()

	err := s.app.Wait(ctx, cancel)

	s.Require().Error(err)
	s.Contains(err.Error(), "mock error")
}

func (s *ApplicationSuite) TestWaitClosesDispatcher() {
	ctrl := gomock.NewController(s.T())
	processor := commission.NewMockOrderProcessor(ctrl)
	dispatcher := commission.NewDispatcher(processor, 1)
	s.app.srv = &service.Services{Dispatcher: dispatcher}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.Require().NoError(s.app.Wait(ctx, cancel))
	s.NotPanics(dispatcher.Close)
}

func (s *ApplicationSuite) TestWaitOutlivesReconcileBatch() {
	ctrl := gomock.NewController(s.T())
	orders := reconcile.NewMockOrders(ctrl)
	cfg := &config.Config{ReconcileInterval: 5 * time.Millisecond, ReconcileAfter: time.Minute, ReconcileWindow: time.Hour}
	reconciler := reconcile.New(cfg, orders, reconcile.NewMockQuerier(ctrl), reconcile.NewMockDispatcher(ctrl))
	s.app.srv = &service.Services{Reconciler: reconciler}

	var started, finished atomic.Int32
	entered := make(chan struct{})
	var once sync.Once
	orders.EXPECT().FindStalePending(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Duration, time.Duration, int) ([]domain.Order, error) {
			started.Add(1)
			once.Do(func() { close(entered) })
			time.Sleep(50 * time.Millisecond)
			finished.Add(1)
			return nil, nil
		}).MinTimes(1)

	ctx, cancel := context.WithCancel(context.Background())
	s.app.startReconciler(ctx)
	<-entered
	cancel()

	s.Require().NoError(s.app.Wait(ctx, cancel))
	s.Equal(started.Load(), finished.Load())
}
