// internal/common/camunda/outcome.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// outcomeClient records the outcome of the last command the broker accepted.
// Commands that are only built, or whose Send fails, leave it unanswered.
type outcomeClient struct {
	worker.JobClient
	status string
}

func (c *outcomeClient) sent(status string, err error) {
	if err == nil {
		c.status = status
	}
}

func (c *outcomeClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return completeStep1{c.JobClient.NewCompleteJobCommand(), c}
}

func (c *outcomeClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return failStep1{c.JobClient.NewFailJobCommand(), c}
}

func (c *outcomeClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return throwStep1{c.JobClient.NewThrowErrorCommand(), c}
}

// complete

type completeStep1 struct {
	commands.CompleteJobCommandStep1
	c *outcomeClient
}

func (s completeStep1) JobKey(key int64) commands.CompleteJobCommandStep2 {
	return completeStep2{s.CompleteJobCommandStep1.JobKey(key), s.c}
}

type completeStep2 struct {
	commands.CompleteJobCommandStep2
	c *outcomeClient
}

func (s completeStep2) Send(ctx context.Context) (*pb.CompleteJobResponse, error) {
	resp, err := s.CompleteJobCommandStep2.Send(ctx)
	s.c.sent(StatusCompleted, err)
	return resp, err
}

func (s completeStep2) wrap(d commands.DispatchCompleteJobCommand, err error) (commands.DispatchCompleteJobCommand, error) {
	if err != nil {
		return nil, err
	}
	return completeDispatch{d, s.c}, nil
}

func (s completeStep2) VariablesFromString(v string) (commands.DispatchCompleteJobCommand, error) {
	return s.wrap(s.CompleteJobCommandStep2.VariablesFromString(v))
}

func (s completeStep2) VariablesFromStringer(v fmt.Stringer) (commands.DispatchCompleteJobCommand, error) {
	return s.wrap(s.CompleteJobCommandStep2.VariablesFromStringer(v))
}

func (s completeStep2) VariablesFromMap(v map[string]interface{}) (commands.DispatchCompleteJobCommand, error) {
	return s.wrap(s.CompleteJobCommandStep2.VariablesFromMap(v))
}

func (s completeStep2) VariablesFromObject(v interface{}) (commands.DispatchCompleteJobCommand, error) {
	return s.wrap(s.CompleteJobCommandStep2.VariablesFromObject(v))
}

func (s completeStep2) VariablesFromObjectIgnoreOmitempty(v interface{}) (commands.DispatchCompleteJobCommand, error) {
	return s.wrap(s.CompleteJobCommandStep2.VariablesFromObjectIgnoreOmitempty(v))
}

type completeDispatch struct {
	commands.DispatchCompleteJobCommand
	c *outcomeClient
}

func (d completeDispatch) Send(ctx context.Context) (*pb.CompleteJobResponse, error) {
	resp, err := d.DispatchCompleteJobCommand.Send(ctx)
	d.c.sent(StatusCompleted, err)
	return resp, err
}

// fail

type failStep1 struct {
	commands.FailJobCommandStep1
	c *outcomeClient
}

func (s failStep1) JobKey(key int64) commands.FailJobCommandStep2 {
	return failStep2{s.FailJobCommandStep1.JobKey(key), s.c}
}

type failStep2 struct {
	commands.FailJobCommandStep2
	c *outcomeClient
}

func (s failStep2) Retries(retries int32) commands.FailJobCommandStep3 {
	return failStep3{s.FailJobCommandStep2.Retries(retries), s.c}
}

type failStep3 struct {
	commands.FailJobCommandStep3
	c *outcomeClient
}

func (s failStep3) Send(ctx context.Context) (*pb.FailJobResponse, error) {
	resp, err := s.FailJobCommandStep3.Send(ctx)
	s.c.sent(StatusFailed, err)
	return resp, err
}

func (s failStep3) RetryBackoff(backoff time.Duration) commands.FailJobCommandStep3 {
	return failStep3{s.FailJobCommandStep3.RetryBackoff(backoff), s.c}
}

func (s failStep3) ErrorMessage(msg string) commands.FailJobCommandStep3 {
	return failStep3{s.FailJobCommandStep3.ErrorMessage(msg), s.c}
}

func (s failStep3) wrap(d commands.DispatchFailJobCommand, err error) (commands.DispatchFailJobCommand, error) {
	if err != nil {
		return nil, err
	}
	return failDispatch{d, s.c}, nil
}

func (s failStep3) VariablesFromString(v string) (commands.DispatchFailJobCommand, error) {
	return s.wrap(s.FailJobCommandStep3.VariablesFromString(v))
}

func (s failStep3) VariablesFromStringer(v fmt.Stringer) (commands.DispatchFailJobCommand, error) {
	return s.wrap(s.FailJobCommandStep3.VariablesFromStringer(v))
}

func (s failStep3) VariablesFromMap(v map[string]interface{}) (commands.DispatchFailJobCommand, error) {
	return s.wrap(s.FailJobCommandStep3.VariablesFromMap(v))
}

func (s failStep3) VariablesFromObject(v interface{}) (commands.DispatchFailJobCommand, error) {
	return s.wrap(s.FailJobCommandStep3.VariablesFromObject(v))
}

func (s failStep3) VariablesFromObjectIgnoreOmitempty(v interface{}) (commands.DispatchFailJobCommand, error) {
	return s.wrap(s.FailJobCommandStep3.VariablesFromObjectIgnoreOmitempty(v))
}

type failDispatch struct {
	commands.DispatchFailJobCommand
	c *outcomeClient
}

func (d failDispatch) Send(ctx context.Context) (*pb.FailJobResponse, error) {
	resp, err := d.DispatchFailJobCommand.Send(ctx)
	d.c.sent(StatusFailed, err)
	return resp, err
}

// throw error

type throwStep1 struct {
	commands.ThrowErrorCommandStep1
	c *outcomeClient
}

func (s throwStep1) JobKey(key int64) commands.ThrowErrorCommandStep2 {
	return throwStep2{s.ThrowErrorCommandStep1.JobKey(key), s.c}
}

type throwStep2 struct {
	commands.ThrowErrorCommandStep2
	c *outcomeClient
}

func (s throwStep2) ErrorCode(code string) commands.DispatchThrowErrorCommand {
	return throwDispatch{s.ThrowErrorCommandStep2.ErrorCode(code), s.c}
}

type throwDispatch struct {
	commands.DispatchThrowErrorCommand
	c *outcomeClient
}

func (d throwDispatch) Send(ctx context.Context) (*pb.ThrowErrorResponse, error) {
	resp, err := d.DispatchThrowErrorCommand.Send(ctx)
	d.c.sent(StatusBPMNError, err)
	return resp, err
}

func (d throwDispatch) ErrorMessage(msg string) commands.DispatchThrowErrorCommand {
	return throwDispatch{d.DispatchThrowErrorCommand.ErrorMessage(msg), d.c}
}

func (d throwDispatch) wrap(next commands.DispatchThrowErrorCommand, err error) (commands.DispatchThrowErrorCommand, error) {
	if err != nil {
		return nil, err
	}
	return throwDispatch{next, d.c}, nil
}

func (d throwDispatch) VariablesFromString(v string) (commands.DispatchThrowErrorCommand, error) {
	return d.wrap(d.DispatchThrowErrorCommand.VariablesFromString(v))
}

func (d throwDispatch) VariablesFromStringer(v fmt.Stringer) (commands.DispatchThrowErrorCommand, error) {
	return d.wrap(d.DispatchThrowErrorCommand.VariablesFromStringer(v))
}

func (d throwDispatch) VariablesFromMap(v map[string]interface{}) (commands.DispatchThrowErrorCommand, error) {
	return d.wrap(d.DispatchThrowErrorCommand.VariablesFromMap(v))
}

func (d throwDispatch) VariablesFromObject(v interface{}) (commands.DispatchThrowErrorCommand, error) {
	return d.wrap(d.DispatchThrowErrorCommand.VariablesFromObject(v))
}

func (d throwDispatch) VariablesFromObjectIgnoreOmitempty(v interface{}) (commands.DispatchThrowErrorCommand, error) {
	return d.wrap(d.DispatchThrowErrorCommand.VariablesFromObjectIgnoreOmitempty(v))
}
