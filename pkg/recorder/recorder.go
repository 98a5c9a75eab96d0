// Package recorder logs lifecycle events through klog. The CLI has no
// cluster object to attach events to, so recorded events become structured
// log lines instead.
package recorder

import (
	"context"
	"fmt"

	"github.com/openshift/library-go/pkg/operator/events"
	"k8s.io/klog/v2"
)

// LoggingRecorder emits recorded events via the contextual logger.
type LoggingRecorder struct {
	component string
	ctx       context.Context
}

// NewLoggingRecorder returns a recorder logging all events for component.
func NewLoggingRecorder(component string) events.Recorder {
	return &LoggingRecorder{
		component: component,
		ctx:       context.Background(),
	}
}

func (r *LoggingRecorder) ComponentName() string {
	return r.component
}

func (r *LoggingRecorder) WithContext(ctx context.Context) events.Recorder {
	clone := *r
	clone.ctx = ctx
	return &clone
}

func (r *LoggingRecorder) ForComponent(component string) events.Recorder {
	clone := *r
	clone.component = component
	return &clone
}

func (r *LoggingRecorder) WithComponentSuffix(suffix string) events.Recorder {
	return r.ForComponent(fmt.Sprintf("%s-%s", r.component, suffix))
}

func (r *LoggingRecorder) Event(reason, message string) {
	logger := klog.FromContext(r.ctx)
	logger.Info(fmt.Sprintf("INFO: %s", message), "component", r.component, "reason", reason)
}

func (r *LoggingRecorder) Eventf(reason, messageFmt string, args ...interface{}) {
	r.Event(reason, fmt.Sprintf(messageFmt, args...))
}

func (r *LoggingRecorder) Warning(reason, message string) {
	logger := klog.FromContext(r.ctx)
	logger.Info(fmt.Sprintf("WARNING: %s", message), "component", r.component, "reason", reason)
}

func (r *LoggingRecorder) Warningf(reason, messageFmt string, args ...interface{}) {
	r.Warning(reason, fmt.Sprintf(messageFmt, args...))
}

func (r *LoggingRecorder) Shutdown() {}
