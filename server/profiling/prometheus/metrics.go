/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package prometheus provides a Prometheus metrics exporter.
package prometheus

import (
	"fmt"

	grpcprometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/internal/version"
)

const (
	namespace         = "textsync"
	hostnameLabel     = "hostname"
	resultLabel       = "result"
	taskTypeLabel     = "task_type"
	docEventTypeLabel = "doc_event_type"
	methodLabel       = "method"
	codeLabel         = "code"

	// SyncResultSuccess is the result label of a sync that applied its batch.
	SyncResultSuccess = "success"

	// SyncResultConflict is the result label of a sync rejected as stale.
	SyncResultConflict = "conflict"
)

// Metrics manages the metric information that TextSync is trying to measure.
type Metrics struct {
	registry      *prometheus.Registry
	serverMetrics *grpcprometheus.ServerMetrics

	serverVersion *prometheus.GaugeVec

	syncResponseSeconds       prometheus.Histogram
	syncTotal                 *prometheus.CounterVec
	syncReceivedActionsTotal  *prometheus.CounterVec
	syncSentActionsTotal      *prometheus.CounterVec
	backgroundGoroutinesTotal *prometheus.GaugeVec

	watchDocumentConnectionsTotal *prometheus.GaugeVec
	watchDocumentEventsTotal      *prometheus.CounterVec

	httpHandledTotal *prometheus.CounterVec
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	serverMetrics := grpcprometheus.NewServerMetrics()

	if err := reg.Register(serverMetrics); err != nil {
		return nil, fmt.Errorf("register grpc server metrics: %w", err)
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	metrics := &Metrics{
		registry:      reg,
		serverMetrics: serverMetrics,
		serverVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "version",
			Help:      "Which version is running. 1 for 'server_version' label with current version.",
		}, []string{"server_version"}),
		syncResponseSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "response_seconds",
			Help:      "The response time of Sync.",
		}),
		syncTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "total",
			Help:      "The total count of Sync calls by result.",
		}, []string{hostnameLabel, resultLabel}),
		syncReceivedActionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "received_actions_total",
			Help:      "The total count of actions applied from request packs in Sync.",
		}, []string{hostnameLabel}),
		syncSentActionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "sent_actions_total",
			Help:      "The total count of missed actions sent to stale clients in Sync.",
		}, []string{hostnameLabel}),
		backgroundGoroutinesTotal: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "goroutines_total",
			Help:      "The total number of goroutines attached by a particular background task.",
		}, []string{taskTypeLabel}),
		watchDocumentConnectionsTotal: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "watch_document_connections_total",
			Help:      "The total number of document watch connections.",
		}, []string{hostnameLabel}),
		watchDocumentEventsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "watch_document_events_total",
			Help:      "The total number of events sent to document watch connections.",
		}, []string{hostnameLabel, docEventTypeLabel}),
		httpHandledTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "server_handled_total",
			Help:      "Total number of HTTP requests completed on the gateway.",
		}, []string{methodLabel, codeLabel}),
	}

	metrics.serverVersion.With(prometheus.Labels{
		"server_version": version.Version,
	}).Set(1)

	return metrics, nil
}

// ObserveSyncResponseSeconds adds an observation for response time of Sync.
func (m *Metrics) ObserveSyncResponseSeconds(seconds float64) {
	m.syncResponseSeconds.Observe(seconds)
}

// AddSync counts a Sync call with the given result.
func (m *Metrics) AddSync(hostname, result string) {
	m.syncTotal.With(prometheus.Labels{
		hostnameLabel: hostname,
		resultLabel:   result,
	}).Inc()
}

// AddSyncReceivedActions adds the number of actions applied from the request
// pack of Sync.
func (m *Metrics) AddSyncReceivedActions(hostname string, count int) {
	m.syncReceivedActionsTotal.With(prometheus.Labels{
		hostnameLabel: hostname,
	}).Add(float64(count))
}

// AddSyncSentActions adds the number of missed actions sent back by Sync.
func (m *Metrics) AddSyncSentActions(hostname string, count int) {
	m.syncSentActionsTotal.With(prometheus.Labels{
		hostnameLabel: hostname,
	}).Add(float64(count))
}

// AddBackgroundGoroutines adds the number of goroutines attached by a
// particular background task.
func (m *Metrics) AddBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Inc()
}

// RemoveBackgroundGoroutines removes the number of goroutines attached by a
// particular background task.
func (m *Metrics) RemoveBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Dec()
}

// AddWatchDocumentConnections adds the number of document watch connections.
func (m *Metrics) AddWatchDocumentConnections(hostname string) {
	m.watchDocumentConnectionsTotal.With(prometheus.Labels{
		hostnameLabel: hostname,
	}).Inc()
}

// RemoveWatchDocumentConnections removes the number of document watch
// connections.
func (m *Metrics) RemoveWatchDocumentConnections(hostname string) {
	m.watchDocumentConnectionsTotal.With(prometheus.Labels{
		hostnameLabel: hostname,
	}).Dec()
}

// AddWatchDocumentEvents adds the number of events sent to document watch
// connections.
func (m *Metrics) AddWatchDocumentEvents(hostname string, eventType types.DocEventType) {
	m.watchDocumentEventsTotal.With(prometheus.Labels{
		hostnameLabel:     hostname,
		docEventTypeLabel: string(eventType),
	}).Inc()
}

// AddHTTPHandled counts an HTTP request completed on the gateway.
func (m *Metrics) AddHTTPHandled(method string, code int) {
	m.httpHandledTotal.With(prometheus.Labels{
		methodLabel: method,
		codeLabel:   fmt.Sprintf("%d", code),
	}).Inc()
}

// ServerMetrics returns the gRPC server metrics, used as interceptors.
func (m *Metrics) ServerMetrics() *grpcprometheus.ServerMetrics {
	return m.serverMetrics
}

// RegisterGRPCServer registers the given gRPC server.
func (m *Metrics) RegisterGRPCServer(server *grpc.Server) {
	m.serverMetrics.InitializeMetrics(server)
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
