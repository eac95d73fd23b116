package project

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Request body kinds accepted by the request API
const (
	KindProjectDesign         = "project_design"
	KindProjectContacts       = "project_contacts"
	KindFundingInformation    = "funding_information"
	KindExperimentDescription = "experiment_description"
	KindExperimentalVariables = "experimental_variables"
	KindExperimentalGroups    = "experimental_groups"
	KindConfoundingVariables  = "confounding_variables"
)

// ProjectUpdateBody is implemented by the bodies of project update requests
type ProjectUpdateBody interface {
	projectUpdate()
}

// ExperimentUpdateBody is implemented by the bodies of experiment update requests
type ExperimentUpdateBody interface {
	experimentUpdate()
}

// ProjectDesign sets title and objective
type ProjectDesign struct {
	Title     string `json:"title"`
	Objective string `json:"objective"`
}

// ProjectContacts replaces the people named on a project. A nil
// responsible person removes the current one.
type ProjectContacts struct {
	Investigator ContactInput  `json:"investigator"`
	Manager      ContactInput  `json:"manager"`
	Responsible  *ContactInput `json:"responsible,omitempty"`
}

// FundingInformation sets the grant. Blank values remove the funding.
type FundingInformation struct {
	Grant   string `json:"grant"`
	GrantID string `json:"grant_id"`
}

// ExperimentalVariables is the complete list of variables an experiment should have
type ExperimentalVariables struct {
	Variables []VariableInput `json:"experimental_variables"`
}

// AsyncGroup is an experimental group; groups without a number are created
type AsyncGroup struct {
	GroupNumber *int         `json:"group_id,omitempty"`
	Name        string       `json:"name"`
	SampleSize  int          `json:"sample_size"`
	Levels      []LevelInput `json:"levels"`
}

// ExperimentalGroups is the complete list of groups an experiment should have
type ExperimentalGroups struct {
	Groups []AsyncGroup `json:"experimental_groups"`
}

// ConfoundingVariableInfo names a confounding variable; variables without id are created
type ConfoundingVariableInfo struct {
	ID   *uuid.UUID `json:"id,omitempty"`
	Name string     `json:"name"`
}

// ConfoundingVariables is the complete list of confounding variables of an experiment
type ConfoundingVariables struct {
	Variables []ConfoundingVariableInfo `json:"confounding_variables"`
}

func (ProjectDesign) projectUpdate()      {}
func (ProjectContacts) projectUpdate()    {}
func (FundingInformation) projectUpdate() {}

func (ExperimentDescription) experimentUpdate() {}
func (ExperimentalVariables) experimentUpdate() {}
func (ExperimentalGroups) experimentUpdate()    {}
func (ConfoundingVariables) experimentUpdate()  {}

// ProjectUpdateRequest changes one aspect of a project
type ProjectUpdateRequest struct {
	ProjectID string
	Body      ProjectUpdateBody
	RequestID string
}

// ProjectUpdateResponse echoes the applied change
type ProjectUpdateResponse struct {
	ProjectID string            `json:"project_id"`
	Body      ProjectUpdateBody `json:"body"`
	RequestID string            `json:"request_id,omitempty"`
}

// ExperimentUpdateRequest changes one aspect of an experiment
type ExperimentUpdateRequest struct {
	ProjectID    string
	ExperimentID string
	Body         ExperimentUpdateBody
	RequestID    string
}

// ExperimentUpdateResponse echoes the applied change
type ExperimentUpdateResponse struct {
	ExperimentID string               `json:"experiment_id"`
	Body         ExperimentUpdateBody `json:"body"`
	RequestID    string               `json:"request_id,omitempty"`
}

// ProjectCreationRequest creates a project from its design and contacts
type ProjectCreationRequest struct {
	Design    ProjectDesign       `json:"design"`
	Contacts  ProjectContacts     `json:"contacts"`
	Funding   *FundingInformation `json:"funding,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// ProjectCreationResponse carries the id of the created project
type ProjectCreationResponse struct {
	ProjectID string `json:"project_id"`
	RequestID string `json:"request_id,omitempty"`
}

// RawRequest is the wire form of update requests. Kind selects the body type.
type RawRequest struct {
	RequestID    string          `json:"request_id,omitempty"`
	ProjectID    string          `json:"project_id"`
	ExperimentID string          `json:"experiment_id,omitempty"`
	Kind         string          `json:"kind"`
	Body         json.RawMessage `json:"body"`
}

// IsExperimentRequest reports whether the request targets an experiment
func (r RawRequest) IsExperimentRequest() bool {
	switch r.Kind {
	case KindExperimentDescription, KindExperimentalVariables, KindExperimentalGroups, KindConfoundingVariables:
		return true
	}
	return false
}

// ProjectRequest decodes a project update request
func (r RawRequest) ProjectRequest() (ProjectUpdateRequest, error) {
	var body ProjectUpdateBody
	var err error
	switch r.Kind {
	case KindProjectDesign:
		body, err = decodeBody[ProjectDesign](r.Body)
	case KindProjectContacts:
		body, err = decodeBody[ProjectContacts](r.Body)
	case KindFundingInformation:
		body, err = decodeBody[FundingInformation](r.Body)
	default:
		return ProjectUpdateRequest{}, unknownRequest(r.Kind)
	}
	if err != nil {
		return ProjectUpdateRequest{}, err
	}
	return ProjectUpdateRequest{ProjectID: r.ProjectID, Body: body, RequestID: r.RequestID}, nil
}

// ExperimentRequest decodes an experiment update request
func (r RawRequest) ExperimentRequest() (ExperimentUpdateRequest, error) {
	var body ExperimentUpdateBody
	var err error
	switch r.Kind {
	case KindExperimentDescription:
		body, err = decodeBody[ExperimentDescription](r.Body)
	case KindExperimentalVariables:
		body, err = decodeBody[ExperimentalVariables](r.Body)
	case KindExperimentalGroups:
		body, err = decodeBody[ExperimentalGroups](r.Body)
	case KindConfoundingVariables:
		body, err = decodeBody[ConfoundingVariables](r.Body)
	default:
		return ExperimentUpdateRequest{}, unknownRequest(r.Kind)
	}
	if err != nil {
		return ExperimentUpdateRequest{}, err
	}
	return ExperimentUpdateRequest{
		ProjectID:    r.ProjectID,
		ExperimentID: r.ExperimentID,
		Body:         body,
		RequestID:    r.RequestID,
	}, nil
}

func decodeBody[T any](data json.RawMessage) (T, error) {
	var body T
	if len(data) == 0 {
		return body, fmt.Errorf("%w: missing request body", ErrUnknownRequest)
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return body, fmt.Errorf("%w: %v", ErrUnknownRequest, err)
	}
	return body, nil
}

func unknownRequest(kind string) error {
	if strings.TrimSpace(kind) == "" {
		kind = "<none>"
	}
	return fmt.Errorf("%w: unknown request kind %s", ErrUnknownRequest, kind)
}
