package form

import (
	"context"

	"go.uber.org/zap"
)

// Submit hands a copy of the values to the submit handler in the background.
// The handler context is cancelled when ctx is done or the form is closed.
// Only one submission runs at a time: a second call while submitting logs a
// warning, changes nothing and returns ErrSubmitInProgress.
func (f *Form) Submit(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.submitting {
		f.mu.Unlock()
		f.logger.Warn("form: submit already in progress")
		return ErrSubmitInProgress
	}
	f.submitting = true
	f.handlerRunning = true
	values := cloneValues(f.values)
	base := f.baseCtx
	f.commitLocked()
	f.mu.Unlock()

	f.notify()

	go func() {
		handlerCtx, cancel := context.WithCancel(ctx)
		stop := context.AfterFunc(base, cancel)
		defer func() {
			stop()
			cancel()
		}()
		f.finishSubmit(f.callSubmit(handlerCtx, values))
	}()
	return nil
}

func (f *Form) callSubmit(ctx context.Context, values Values) (status *Status) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("form: submit handler panicked", zap.Any("panic", r))
			status = dangerStatus(panicError{value: r}.Error())
		}
	}()

	result, err := f.onSubmit(ctx, values)
	if err != nil {
		f.logger.Info("form: submit failed", zap.Error(err))
		return dangerStatus(err.Error())
	}
	return result.clone()
}

// finishSubmit shows the handler's status. A status with AutoHideAfter keeps
// the form submitting until the timer clears both. The timer callback must not
// run synchronously inside afterFunc.
func (f *Form) finishSubmit(status *Status) {
	f.mu.Lock()
	f.handlerRunning = false
	f.status = status
	if status != nil && status.AutoHideAfter > 0 && !f.closed {
		f.stopHide = f.afterFunc(status.AutoHideAfter, func() {
			f.hideStatus(status)
		})
	} else {
		f.submitting = false
	}
	f.commitLocked()
	f.mu.Unlock()

	f.notify()
}

// hideStatus ends the submission. The status is only cleared while the slot
// still holds shown; a validation pass may have replaced it meanwhile.
func (f *Form) hideStatus(shown *Status) {
	f.mu.Lock()
	if !f.submitting || f.stopHide == nil {
		f.mu.Unlock()
		return
	}
	f.stopHide = nil
	f.submitting = false
	if f.status == shown {
		f.status = nil
	}
	f.commitLocked()
	f.mu.Unlock()

	f.notify()
}
