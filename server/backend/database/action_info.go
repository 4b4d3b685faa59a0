/*
 * Copyright 2024 The Yorkie Authors. All rights reserved.
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

package database

import (
	"fmt"
	"time"

	"github.com/yorkie-team/textsync/pkg/document/action"
)

// ActionInfo is a structure representing an action in the log of a document.
type ActionInfo struct {
	ID        string      `bson:"_id"`
	DocID     string      `bson:"doc_id"`
	Version   int64       `bson:"version"`
	ActionID  string      `bson:"action_id"`
	Kind      action.Kind `bson:"kind"`
	Position  int         `bson:"position"`
	Content   string      `bson:"content"`
	Length    int         `bson:"length"`
	Timestamp time.Time   `bson:"timestamp"`
}

// NewFromAction creates a new ActionInfo of the given action. The version is
// assigned when the action is stored.
func NewFromAction(docID string, a action.Action) (*ActionInfo, error) {
	info := &ActionInfo{
		DocID:     docID,
		ActionID:  a.ID(),
		Kind:      a.Kind(),
		Position:  a.Position(),
		Timestamp: a.Timestamp(),
	}

	switch a := a.(type) {
	case *action.Insert:
		info.Content = a.Content()
	case *action.Delete:
		info.Length = a.Length()
	case *action.Replace:
		info.Content = a.Content()
		info.Length = a.Length()
	default:
		return nil, fmt.Errorf("%T: %w", a, action.ErrUnsupportedAction)
	}

	return info, nil
}

// NewFromActions creates ActionInfos of the given actions.
func NewFromActions(docID string, actions []action.Action) ([]*ActionInfo, error) {
	infos := make([]*ActionInfo, 0, len(actions))
	for _, a := range actions {
		info, err := NewFromAction(docID, a)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ToAction creates the action of this ActionInfo.
func (i *ActionInfo) ToAction() (action.Action, error) {
	switch i.Kind {
	case action.KindInsert:
		return action.NewInsert(i.ActionID, i.Timestamp, i.Position, i.Content), nil
	case action.KindDelete:
		return action.NewDelete(i.ActionID, i.Timestamp, i.Position, i.Length), nil
	case action.KindReplace:
		return action.NewReplace(i.ActionID, i.Timestamp, i.Position, i.Content, i.Length), nil
	}

	return nil, fmt.Errorf("%s: %w", i.Kind, action.ErrUnsupportedAction)
}

// ToActions creates the actions of the given ActionInfos.
func ToActions(infos []*ActionInfo) ([]action.Action, error) {
	actions := make([]action.Action, 0, len(infos))
	for _, info := range infos {
		a, err := info.ToAction()
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// DeepCopy returns a deep copy of this ActionInfo.
func (i *ActionInfo) DeepCopy() *ActionInfo {
	if i == nil {
		return nil
	}

	clone := *i
	return &clone
}
