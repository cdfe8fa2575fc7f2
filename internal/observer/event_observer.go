package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TransitionEvent is published for every event a session's workflow applies
type TransitionEvent struct {
	SessionID string    `json:"session_id"`
	EventType EventType `json:"event_type"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
	// Duration is set on analysis outcomes: time spent in ANALYZING
	Duration     time.Duration `json:"duration,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	// Metadata carries extra log fields, e.g. the provider on analysis outcomes
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the kind of workflow event
type EventType string

const (
	SessionCreated    EventType = "session_created"
	AuthSucceeded     EventType = "auth_succeeded"
	UploadRejected    EventType = "upload_rejected"
	UploadAccepted    EventType = "upload_accepted"
	AnalysisStarted   EventType = "analysis_started"
	EncodingFailed    EventType = "encoding_failed"
	AnalysisCompleted EventType = "analysis_completed"
	AnalysisFailed    EventType = "analysis_failed"
	ResetRequested    EventType = "reset_requested"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event TransitionEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event TransitionEvent)
}

// LoggingObserver logs workflow events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles workflow events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event TransitionEvent) {
	fields := logrus.Fields{
		"session_id": event.SessionID,
		"event_type": event.EventType,
		"from":       event.From,
		"to":         event.To,
	}
	if event.Duration > 0 {
		fields["duration_ms"] = event.Duration.Milliseconds()
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case AnalysisStarted:
		entry.Info("Face analysis started")
	case AnalysisCompleted:
		entry.Info("Face analysis completed")
	case AnalysisFailed:
		entry.Error("Face analysis failed")
	case EncodingFailed:
		entry.Warn("Image encoding failed")
	case UploadRejected:
		entry.Info("Upload rejected")
	default:
		entry.Debug("Workflow event")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from workflow events
type MetricsObserver struct {
	mu                  sync.RWMutex
	sessionsCreated     int64
	rejectedUploads     int64
	encodingFailures    int64
	totalAnalyses       int64
	successfulAnalyses  int64
	failedAnalyses      int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles workflow events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event TransitionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case SessionCreated:
		o.sessionsCreated++
	case UploadRejected:
		o.rejectedUploads++
	case EncodingFailed:
		o.encodingFailures++
	case AnalysisStarted:
		o.totalAnalyses++
	case AnalysisCompleted:
		o.successfulAnalyses++
		o.totalProcessingTime += event.Duration
	case AnalysisFailed:
		o.failedAnalyses++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulAnalyses > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulAnalyses)
	}

	return map[string]interface{}{
		"sessions_created":       o.sessionsCreated,
		"rejected_uploads":       o.rejectedUploads,
		"encoding_failures":      o.encodingFailures,
		"total_analyses":         o.totalAnalyses,
		"successful_analyses":    o.successfulAnalyses,
		"failed_analyses":        o.failedAnalyses,
		"avg_processing_time_ms": avgProcessingTime.Milliseconds(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	inflight  sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event TransitionEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Notify observers concurrently
	for _, observer := range observers {
		p.inflight.Add(1)
		go func(obs Observer) {
			defer p.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					// Log panic but don't crash the application
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Wait blocks until notifications already dispatched have been handled
func (p *EventPublisher) Wait() {
	p.inflight.Wait()
}
