package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/rcliao/mind-note/internal/model"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		validate = v
	})
	return validate
}

func (p *CreateParams) normalize() {
	p.Refined = strings.TrimSpace(p.Refined)
	p.Context = strings.TrimSpace(p.Context)
	p.Insight = strings.TrimSpace(p.Insight)
	p.AudioURL = strings.TrimSpace(p.AudioURL)
	p.Language = strings.TrimSpace(p.Language)
	if p.Language == "" {
		p.Language = "en"
	}
	p.Tags = trimTags(p.Tags)
}

func (p CreateParams) validate() error {
	if err := inputValidator().Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, describe(err))
	}
	return nil
}

func (p *UpdateParams) validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalid)
	}
	if p.Refined != nil {
		v := strings.TrimSpace(*p.Refined)
		if v == "" {
			return fmt.Errorf("%w: refined must not be empty", ErrInvalid)
		}
		p.Refined = &v
	}
	if p.Context != nil {
		v := strings.TrimSpace(*p.Context)
		if v == "" {
			return fmt.Errorf("%w: context must not be empty", ErrInvalid)
		}
		p.Context = &v
	}
	if p.Tags != nil {
		p.Tags = trimTags(p.Tags)
		if err := inputValidator().Var(p.Tags, "min=1,max=3,dive,required"); err != nil {
			return fmt.Errorf("%w: tags must hold %d-%d non-empty items", ErrInvalid, model.MinTags, model.MaxTags)
		}
	}
	return nil
}

func trimTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.TrimSpace(t)
	}
	return out
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "CreateParams.")
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s is %s", field, fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
