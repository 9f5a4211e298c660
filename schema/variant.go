package schema

import (
	"fmt"

	"github.com/turbot/elb-access-log-collector/constants"
)

type Variant int

const (
	VariantClassic Variant = iota
	VariantApplication
)

func (v Variant) String() string {
	if v == VariantApplication {
		return constants.ElbTypeApplication
	}
	return constants.ElbTypeClassic
}

// Schema returns the field layout for the variant
func (v Variant) Schema() *RowSchema {
	if v == VariantApplication {
		return applicationSchema()
	}
	return classicSchema()
}

// VariantFromElbType maps a configured elb_type to a Variant
func VariantFromElbType(elbType string) (Variant, error) {
	switch elbType {
	case constants.ElbTypeClassic:
		return VariantClassic, nil
	case constants.ElbTypeApplication:
		return VariantApplication, nil
	default:
		return 0, fmt.Errorf("invalid elb_type %q, must be %q or %q", elbType, constants.ElbTypeClassic, constants.ElbTypeApplication)
	}
}

func classicSchema() *RowSchema {
	return &RowSchema{
		Variant: VariantClassic,
		Columns: []*ColumnSchema{
			column("timestamp"),
			column("elb"),
			column("client"),
			column("backend"),
			floatColumn("request_processing_time"),
			floatColumn("backend_processing_time"),
			floatColumn("response_processing_time"),
			intColumn("elb_status_code"),
			intColumn("backend_status_code"),
			intColumn("received_bytes"),
			intColumn("sent_bytes"),
			column("request"),
			column("user_agent"),
			column("ssl_cipher"),
			column("ssl_protocol"),
		},
		LeadingFieldCount:  11,
		TrailingFieldCount: 3,
		AddressColumns:     []string{"client", "backend"},
	}
}

func applicationSchema() *RowSchema {
	return &RowSchema{
		Variant: VariantApplication,
		Columns: []*ColumnSchema{
			column("type"),
			column("timestamp"),
			column("elb"),
			column("client"),
			column("target"),
			floatColumn("request_processing_time"),
			floatColumn("target_processing_time"),
			floatColumn("response_processing_time"),
			intColumn("elb_status_code"),
			intColumn("target_status_code"),
			intColumn("received_bytes"),
			intColumn("sent_bytes"),
			column("request"),
			column("user_agent"),
			column("ssl_cipher"),
			column("ssl_protocol"),
			column("target_group_arn"),
			column("trace_id"),
			column("domain_name"),
			column("chosen_cert_arn"),
		},
		LeadingFieldCount:  12,
		TrailingFieldCount: 7,
		AddressColumns:     []string{"client", "target"},
	}
}
