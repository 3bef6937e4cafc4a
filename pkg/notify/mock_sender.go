// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

type MockSender struct {
	Err error

	Infos     []*Message
	Criticals []*Message
}

func (s *MockSender) Info(msg *Message) error {
	s.Infos = append(s.Infos, msg)
	return s.Err
}

func (s *MockSender) Critical(msg *Message) error {
	s.Criticals = append(s.Criticals, msg)
	return s.Err
}
