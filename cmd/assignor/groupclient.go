package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"strconv"
	"strings"

	"code.cloudfoundry.org/connect-assignor/internal/assign"
)

// wireMember is the JSON shape a member submits to the group-membership
// endpoint this process polls as leader.
type wireMember struct {
	ID              string             `json:"id"`
	Url             string             `json:"url"`
	ConfigOffset    int64              `json:"config_offset"`
	ProtocolVersion int                `json:"protocol_version"`
	Connectors      []string           `json:"connectors"`
	Tasks           []string           `json:"tasks"`
}

// httpMemberSource polls the group-membership endpoint for the current
// round's member list. It stands in for the generated client a real
// group-coordination protocol would provide.
type httpMemberSource struct {
	url    string
	client *http.Client
	log    *log.Logger
}

func (s *httpMemberSource) Members() ([]assign.Member, error) {
	resp, err := s.client.Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("group client: fetching membership: %w", err)
	}
	defer resp.Body.Close()

	var wire []wireMember
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("group client: decoding membership: %w", err)
	}

	members := make([]assign.Member, 0, len(wire))
	for _, m := range wire {
		members = append(members, assign.Member{
			ID: assign.WorkerId(m.ID),
			Metadata: assign.MemberMetadata{
				Url:          m.Url,
				ConfigOffset: m.ConfigOffset,
				PriorAssignment: assign.Assignment{
					ProtocolVersion: assign.ProtocolVersion(m.ProtocolVersion),
					Connectors:      toConnectorIds(m.Connectors),
					Tasks:           toTaskIds(m.Tasks),
				},
			},
		})
	}

	return members, nil
}

// httpPublisher posts each round's computed assignments back to the group-
// membership endpoint for redistribution to members.
type httpPublisher struct {
	url    string
	client *http.Client
	log    *log.Logger
}

type wireAssignment struct {
	WorkerID          string   `json:"worker_id"`
	Error             string   `json:"error"`
	ConnectorsToStart []string `json:"connectors_to_start"`
	TasksToStart      []string `json:"tasks_to_start"`
	ConnectorsToStop  []string `json:"connectors_to_stop"`
	TasksToStop       []string `json:"tasks_to_stop"`
	DelayMillis       int64    `json:"delay_millis"`
}

func (p *httpPublisher) Publish(result map[assign.WorkerId]assign.Assignment, round assign.Round) {
	out := make([]wireAssignment, 0, len(result))
	for w, a := range result {
		out = append(out, wireAssignment{
			WorkerID:          string(w),
			Error:             string(a.Error),
			ConnectorsToStart: fromConnectorIds(a.ConnectorsToStart),
			TasksToStart:      fromTaskIds(a.TasksToStart),
			ConnectorsToStop:  fromConnectorIds(a.ConnectorsToStop),
			TasksToStop:       fromTaskIds(a.TasksToStop),
			DelayMillis:       a.DelayMillis,
		})
	}

	body, err := json.Marshal(out)
	if err != nil {
		p.log.Printf("group client: marshaling round %s: %s", round.ID, err)
		return
	}

	resp, err := p.client.Post(p.url, "application/json", bytes.NewReader(body))
	if err != nil {
		p.log.Printf("group client: publishing round %s: %s", round.ID, err)
		return
	}
	defer resp.Body.Close()
	ioutil.ReadAll(resp.Body)
}

func toConnectorIds(in []string) []assign.ConnectorId {
	out := make([]assign.ConnectorId, len(in))
	for i, s := range in {
		out[i] = assign.ConnectorId(s)
	}
	return out
}

func toTaskIds(in []string) []assign.TaskId {
	out := make([]assign.TaskId, 0, len(in))
	for _, s := range in {
		sep := strings.LastIndex(s, "-")
		if sep < 0 {
			continue
		}
		index, err := strconv.Atoi(s[sep+1:])
		if err != nil {
			continue
		}
		out = append(out, assign.TaskId{Connector: assign.ConnectorId(s[:sep]), Index: index})
	}
	return out
}

func fromConnectorIds(in []assign.ConnectorId) []string {
	out := make([]string, len(in))
	for i, c := range in {
		out[i] = string(c)
	}
	return out
}

func fromTaskIds(in []assign.TaskId) []string {
	out := make([]string, len(in))
	for i, t := range in {
		out[i] = t.String()
	}
	return out
}
