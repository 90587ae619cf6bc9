package core

import "dwellingcore/pkg/domain"

type (
	Document           = domain.Document
	Section            = domain.Section
	Item               = domain.Item
	Fields             = domain.Fields
	SectionPath        = domain.SectionPath
	Change             = domain.Change
	ChangeSet          = domain.ChangeSet
	Action             = domain.Action
	Severity           = domain.Severity
	Status             = domain.Status
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	IndexError         = domain.IndexError
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate       = domain.ActionCreate
	ActionUpdate       = domain.ActionUpdate
	ActionDelete       = domain.ActionDelete
	ActionDuplicate    = domain.ActionDuplicate
	ActionComplete     = domain.ActionComplete
	ActionMarkComplete = domain.ActionMarkComplete
	ActionReset        = domain.ActionReset
)

const (
	StatusNotStarted = domain.StatusNotStarted
	StatusInProgress = domain.StatusInProgress
	StatusComplete   = domain.StatusComplete
)

var (
	ErrUnknownSection = domain.ErrUnknownSection
	ErrNoItem         = domain.ErrNoItem
)
