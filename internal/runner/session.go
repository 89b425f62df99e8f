package runner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/uimatrix/internal/assertion"
	"github.com/ethpandaops/uimatrix/internal/matrix"
	"github.com/ethpandaops/uimatrix/internal/page"
	"github.com/ethpandaops/uimatrix/internal/report"
	"github.com/ethpandaops/uimatrix/internal/scenario"
)

// maxNavigationAttempts is one attempt plus exactly one retry.
const maxNavigationAttempts = 2

// session is one scenario executing on a lane page.
type session struct {
	driver  *Driver
	log     logrus.FieldLogger
	page    page.Page
	res     *report.Result
	current string
}

// run applies the viewport, loads the target page, performs the actions and
// evaluates the assertions. The first capability failure ends the scenario.
func (s *session) run(ctx context.Context, sc matrix.Scenario) ([]assertion.Result, error) {
	err := s.call(ctx, "set_viewport", "", func(ctx context.Context) error {
		return s.page.SetViewport(ctx, sc.Device)
	})
	if err != nil {
		return nil, err
	}

	target, err := s.driver.targets.URL(sc.Page())
	if err != nil {
		return nil, &page.ActionError{Action: scenario.ActionNavigate, Err: err}
	}

	if err := s.navigate(ctx, target); err != nil {
		return nil, err
	}

	for i, a := range sc.Descriptor.Actions() {
		// A leading bare navigate is the initial load performed above.
		if i == 0 && a.Name == scenario.ActionNavigate && a.Args["page"] == "" {
			continue
		}

		if err := s.act(ctx, a); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.driver.cfg.ActionTimeout)
	defer cancel()

	return s.driver.evaluator.Evaluate(ctx, s.page, sc.Descriptor.Assertions())
}

func (s *session) navigate(ctx context.Context, url string) error {
	for attempt := 1; ; attempt++ {
		s.res.NavigationAttempts++

		err := s.call(ctx, scenario.ActionNavigate, url, func(ctx context.Context) error {
			err := s.page.Navigate(ctx, url)
			if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, page.ErrNavigation) {
				return &page.NavigationError{URL: url, Err: err}
			}

			return err
		})
		if err == nil {
			s.current = url

			return nil
		}

		if !errors.Is(err, page.ErrNavigation) || attempt >= maxNavigationAttempts {
			return err
		}

		s.log.WithError(err).WithField("url", url).Warn("navigation failed, retrying once")
		s.driver.observer.NavigationRetried()

		if err := sleep(ctx, s.driver.cfg.RetryDelay); err != nil {
			return err
		}
	}
}

func (s *session) act(ctx context.Context, a scenario.Action) error {
	s.log.WithFields(logrus.Fields{
		"action": a.Name,
		"args":   a.Args,
	}).Debug("performing action")

	switch a.Name {
	case scenario.ActionNavigate:
		url := s.current

		if id := a.Args["page"]; id != "" {
			target, err := s.driver.targets.URL(id)
			if err != nil {
				return &page.ActionError{Action: a.Name, Err: err}
			}

			url = target
		}

		return s.navigate(ctx, url)

	case scenario.ActionFill:
		for _, pair := range scenario.FillPairs(a.Args) {
			selector, value := pair[0], pair[1]

			err := s.call(ctx, a.Name, selector, func(ctx context.Context) error {
				return s.page.Fill(ctx, selector, value)
			})
			if err != nil {
				return err
			}
		}

		return nil

	case scenario.ActionClick, scenario.ActionDoubleClick, scenario.ActionRightClick, scenario.ActionFocus:
		selector := a.Args["selector"]

		return s.call(ctx, a.Name, selector, func(ctx context.Context) error {
			switch a.Name {
			case scenario.ActionClick:
				return s.page.Click(ctx, selector)
			case scenario.ActionDoubleClick:
				return s.page.DoubleClick(ctx, selector)
			case scenario.ActionRightClick:
				return s.page.RightClick(ctx, selector)
			default:
				return s.page.Focus(ctx, selector)
			}
		})

	case scenario.ActionPress:
		count := 1
		if raw, ok := a.Args["count"]; ok {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return &page.ActionError{Action: a.Name, Err: err}
			}

			count = n
		}

		for i := 0; i < count; i++ {
			err := s.call(ctx, a.Name, "", func(ctx context.Context) error {
				return s.page.Press(ctx, a.Args["key"])
			})
			if err != nil {
				return err
			}
		}

		return nil

	case scenario.ActionWait:
		d, err := time.ParseDuration(a.Args["duration"])
		if err != nil {
			return &page.ActionError{Action: a.Name, Err: err}
		}

		return sleep(ctx, d)

	default:
		return &page.ActionError{Action: a.Name, Err: fmt.Errorf("%w: %s", scenario.ErrUnknownAction, a.Name)}
	}
}

// call bounds fn by the action timeout and wraps untyped failures in an
// ActionError. Navigation and viewport errors keep their own type.
func (s *session) call(ctx context.Context, action, selector string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.driver.cfg.ActionTimeout)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		return nil
	}

	if errors.Is(err, page.ErrNavigation) || errors.Is(err, page.ErrViewport) || errors.Is(err, page.ErrAction) {
		return err
	}

	return &page.ActionError{Action: action, Selector: selector, Err: err}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
