package server

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/breakreminder/breakreminder/internal/reminder"
)

const reminderResource = "reminder"

// toStatus converts registry errors into gRPC status errors carrying enough
// detail for the client to rebuild them.
func toStatus(err error) error {
	if err == nil {
		return nil
	}

	var vErr *reminder.ValidationError
	if errors.As(err, &vErr) {
		st := status.New(codes.InvalidArgument, err.Error())
		if withDetails, dErr := st.WithDetails(&errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{
				{Field: vErr.Field, Description: vErr.Reason},
			},
		}); dErr == nil {
			st = withDetails
		}
		return st.Err()
	}

	var nfErr *reminder.NotFoundError
	if errors.As(err, &nfErr) {
		st := status.New(codes.NotFound, err.Error())
		if withDetails, dErr := st.WithDetails(&errdetails.ResourceInfo{
			ResourceType: reminderResource,
			ResourceName: nfErr.ID,
		}); dErr == nil {
			st = withDetails
		}
		return st.Err()
	}

	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codes.Internal, err.Error())
}

// fromStatus converts a gRPC status error back into registry error types.
// Errors without a recognized code are returned unchanged.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.InvalidArgument:
		for _, d := range st.Details() {
			if br, ok := d.(*errdetails.BadRequest); ok && len(br.GetFieldViolations()) > 0 {
				fv := br.GetFieldViolations()[0]
				return &reminder.ValidationError{Field: fv.GetField(), Reason: fv.GetDescription()}
			}
		}
		return &reminder.ValidationError{Field: "request", Reason: st.Message()}
	case codes.NotFound:
		for _, d := range st.Details() {
			if ri, ok := d.(*errdetails.ResourceInfo); ok && ri.GetResourceType() == reminderResource {
				return &reminder.NotFoundError{ID: ri.GetResourceName()}
			}
		}
		return &reminder.NotFoundError{}
	}
	return err
}
