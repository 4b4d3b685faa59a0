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

package sync

import (
	"context"
	gosync "sync"
	gotime "time"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/pkg/document/action"
	"github.com/yorkie-team/textsync/server/logging"
)

const (
	// publishTimeout is the timeout for publishing an event.
	publishTimeout = 100 * gotime.Millisecond

	// eventBufferSize is the capacity of the event channel of a subscription.
	eventBufferSize = 16
)

// DocEvent represents events that occur related to the document.
type DocEvent struct {
	Type       types.DocEventType
	DocumentID string
	Version    int64
	Actions    []action.Action
}

// Subscription represents a subscription of a subscriber to a document.
type Subscription struct {
	id         string
	subscriber string
	mu         gosync.Mutex
	closed     bool
	events     chan DocEvent
}

// NewSubscription creates a new instance of Subscription.
func NewSubscription(subscriber string) *Subscription {
	return &Subscription{
		id:         xid.New().String(),
		subscriber: subscriber,
		events:     make(chan DocEvent, eventBufferSize),
	}
}

// ID returns the id of this subscription.
func (s *Subscription) ID() string {
	return s.id
}

// Subscriber returns the subscriber of this subscription.
func (s *Subscription) Subscriber() string {
	return s.subscriber
}

// Events returns the DocEvent channel of this subscription.
func (s *Subscription) Events() <-chan DocEvent {
	return s.events
}

// Close closes all resources of this Subscription.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// Publish publishes the given event to the subscriber. It returns false if
// the subscription is closed or the subscriber does not receive the event in
// time.
func (s *Subscription) Publish(event DocEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.events <- event:
		return true
	case <-gotime.After(publishTimeout):
		return false
	}
}

// PubSub delivers document events to the subscriptions of this server.
type PubSub struct {
	mu               gosync.RWMutex
	subscriptionsMap map[string]map[string]*Subscription
}

// NewPubSub creates an instance of PubSub.
func NewPubSub() *PubSub {
	return &PubSub{
		subscriptionsMap: make(map[string]map[string]*Subscription),
	}
}

// Subscribe subscribes to the given document.
func (m *PubSub) Subscribe(
	ctx context.Context,
	subscriber string,
	docID string,
) *Subscription {
	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Subscribe(%s,%s) Start`, docID, subscriber)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	subs, ok := m.subscriptionsMap[docID]
	if !ok {
		subs = make(map[string]*Subscription)
		m.subscriptionsMap[docID] = subs
	}

	sub := NewSubscription(subscriber)
	subs[sub.ID()] = sub

	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Subscribe(%s,%s) End`, docID, subscriber)
	}
	return sub
}

// Unsubscribe unsubscribes the given subscription from the document and
// closes it.
func (m *PubSub) Unsubscribe(
	ctx context.Context,
	docID string,
	sub *Subscription,
) {
	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Unsubscribe(%s,%s) Start`, docID, sub.Subscriber())
	}

	m.mu.Lock()
	if subs, ok := m.subscriptionsMap[docID]; ok {
		delete(subs, sub.ID())
		if len(subs) == 0 {
			delete(m.subscriptionsMap, docID)
		}
	}
	m.mu.Unlock()

	sub.Close()

	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Unsubscribe(%s,%s) End`, docID, sub.Subscriber())
	}
}

// Publish publishes the given event to the subscriptions of its document.
func (m *PubSub) Publish(ctx context.Context, event DocEvent) {
	for _, sub := range m.subscriptions(event.DocumentID) {
		if !sub.Publish(event) {
			logging.From(ctx).Warnf(
				"publish(%s,%s) to %s timeout or closed",
				event.DocumentID,
				event.Type,
				sub.Subscriber(),
			)
		}
	}
}

// PublishAll publishes the given event to every subscription regardless of
// its document. The document ID of the event is replaced with the subscribed
// one.
func (m *PubSub) PublishAll(ctx context.Context, event DocEvent) {
	m.mu.RLock()
	docIDs := make([]string, 0, len(m.subscriptionsMap))
	for docID := range m.subscriptionsMap {
		docIDs = append(docIDs, docID)
	}
	m.mu.RUnlock()

	for _, docID := range docIDs {
		e := event
		e.DocumentID = docID
		m.Publish(ctx, e)
	}
}

// Subscribers returns the subscribers of the given document.
func (m *PubSub) Subscribers(docID string) []string {
	var subscribers []string
	for _, sub := range m.subscriptions(docID) {
		subscribers = append(subscribers, sub.Subscriber())
	}
	return subscribers
}

func (m *PubSub) subscriptions(docID string) []*Subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := m.subscriptionsMap[docID]
	result := make([]*Subscription, 0, len(subs))
	for _, sub := range subs {
		result = append(result, sub)
	}
	return result
}
