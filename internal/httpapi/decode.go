package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kaizen/kaizen"
)

type upload struct {
	multipart.File
}

type createInput struct {
	record kaizen.Kaizen
	image  *upload
}

type detailInput struct {
	kaizen.Detail
	image *upload
}

// createBody is the JSON form of a new record.
type createBody struct {
	Plant              textField     `json:"Plant"`
	Department         textField     `json:"Kaizen_Department"`
	Cell               textField     `json:"Kaizen_For_Cell"`
	Source             textField     `json:"Kaizen_Source"`
	ResultArea         textField     `json:"Result_Area"`
	Title              textField     `json:"Kaizen_Title"`
	Problem            textField     `json:"Present_Problem"`
	Suggestion         textField     `json:"Kaizen_Suggestion"`
	Username           textField     `json:"username"`
	Company            textField     `json:"company"`
	Status             textField     `json:"status"`
	AnnualSavings      textField     `json:"annualSavings"`
	Benefits           benefitsField `json:"benefits"`
	Other              textField     `json:"other"`
	Impact             textField     `json:"impact"`
	ImplementationCost textField     `json:"implementationCost"`
	ImplementedAction  textField     `json:"implementedAction"`
	TeamMembers        textField     `json:"teamMembers"`
	BenefitScore       textField     `json:"benefitscore"`
}

func (b createBody) record() kaizen.Kaizen {
	return kaizen.Kaizen{
		Plant:              string(b.Plant),
		Department:         string(b.Department),
		Cell:               string(b.Cell),
		Source:             string(b.Source),
		ResultArea:         string(b.ResultArea),
		Title:              string(b.Title),
		Problem:            string(b.Problem),
		Suggestion:         string(b.Suggestion),
		Username:           string(b.Username),
		Company:            string(b.Company),
		Status:             string(b.Status),
		AnnualSavings:      string(b.AnnualSavings),
		Benefits:           kaizen.Benefits(b.Benefits),
		Other:              string(b.Other),
		Impact:             string(b.Impact),
		ImplementationCost: string(b.ImplementationCost),
		ImplementedAction:  string(b.ImplementedAction),
		TeamMembers:        string(b.TeamMembers),
		BenefitScore:       string(b.BenefitScore),
	}
}

// detailBody is the JSON form of a full-detail update.
type detailBody struct {
	TeamMembers        *textField     `json:"teamMembers"`
	ImplementationCost *textField     `json:"implementationCost"`
	AnnualSavings      *textField     `json:"annualSavings"`
	ImplementedAction  *textField     `json:"implementedAction"`
	Impact             *textField     `json:"impact"`
	Benefits           *benefitsField `json:"benefits"`
	Status             *textField     `json:"status"`
	Other              *textField     `json:"other"`
}

// textField holds a string that clients may also send as a number or a
// boolean. Numbers keep their literal text.
type textField string

func (t *textField) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
	case string:
		*t = textField(v)
	case json.Number:
		*t = textField(v.String())
	case bool:
		*t = textField(strconv.FormatBool(v))
	default:
		return goerrors.New("expected a string, number or boolean", goerrors.CategoryBadInput)
	}
	return nil
}

func (t *textField) ptr() *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

// benefitsField accepts either a list of tags or a single tag.
type benefitsField kaizen.Benefits

func (b *benefitsField) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*b = benefitsField(list)
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*b = benefitsField(splitBenefits([]string{single}))
	return nil
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func badInput(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return goerrors.New("request body too large", goerrors.CategoryBadInput).
			WithCode(http.StatusRequestEntityTooLarge).
			WithTextCode("BODY_TOO_LARGE")
	}
	return goerrors.Wrap(err, goerrors.CategoryBadInput, msg)
}

// parseMultipart parses the form and pulls the optional file under fileField.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request, fileField string) (url.Values, *upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, nil, badInput(err, "parse multipart form")
	}
	file, _, err := r.FormFile(fileField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return r.MultipartForm.Value, nil, nil
	case err != nil:
		return nil, nil, badInput(err, "read "+fileField)
	}
	return r.MultipartForm.Value, &upload{File: file}, nil
}

func (h *Handler) decodeCreate(w http.ResponseWriter, r *http.Request) (createInput, error) {
	if isMultipart(r) {
		form, file, err := h.parseMultipart(w, r, "image")
		if err != nil {
			return createInput{}, err
		}
		return createInput{record: recordFromForm(form), image: file}, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	var body createBody
	if err := decodeJSON(r, &body); err != nil {
		return createInput{}, err
	}
	return createInput{record: body.record()}, nil
}

func (h *Handler) decodeDetail(w http.ResponseWriter, r *http.Request) (detailInput, error) {
	if isMultipart(r) {
		form, file, err := h.parseMultipart(w, r, "updatedImage")
		if err != nil {
			return detailInput{}, err
		}
		return detailInput{Detail: detailFromForm(form), image: file}, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	var body detailBody
	if err := decodeJSON(r, &body); err != nil {
		return detailInput{}, err
	}
	d := kaizen.Detail{
		TeamMembers:        body.TeamMembers.ptr(),
		ImplementationCost: body.ImplementationCost.ptr(),
		AnnualSavings:      body.AnnualSavings.ptr(),
		ImplementedAction:  body.ImplementedAction.ptr(),
		Impact:             body.Impact.ptr(),
		Status:             body.Status.ptr(),
		Other:              body.Other.ptr(),
	}
	if body.Benefits != nil {
		b := kaizen.Benefits(*body.Benefits)
		d.Benefits = &b
	}
	return detailInput{Detail: d}, nil
}

// decodeJSON treats an empty body as an empty object.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return badInput(err, "decode json body")
}

// decodeField reads one scalar from a JSON or form body. Numbers and
// booleans are kept in their textual form.
func (h *Handler) decodeField(w http.ResponseWriter, r *http.Request, name string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	switch {
	case isMultipart(r):
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			return "", badInput(err, "parse multipart form")
		}
		return strings.TrimSpace(r.FormValue(name)), nil
	case strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return "", badInput(err, "parse form")
		}
		return strings.TrimSpace(r.FormValue(name)), nil
	}

	body := map[string]json.RawMessage{}
	if err := decodeJSON(r, &body); err != nil {
		return "", err
	}
	raw, ok := body[name]
	if !ok {
		return "", nil
	}
	var v textField
	if err := json.Unmarshal(raw, &v); err != nil {
		// objects and arrays count as missing
		return "", nil
	}
	return strings.TrimSpace(string(v)), nil
}

var formFields = []struct {
	name string
	set  func(*kaizen.Kaizen, string)
}{
	{"Plant", func(k *kaizen.Kaizen, v string) { k.Plant = v }},
	{"Kaizen_Department", func(k *kaizen.Kaizen, v string) { k.Department = v }},
	{"Kaizen_For_Cell", func(k *kaizen.Kaizen, v string) { k.Cell = v }},
	{"Kaizen_Source", func(k *kaizen.Kaizen, v string) { k.Source = v }},
	{"Result_Area", func(k *kaizen.Kaizen, v string) { k.ResultArea = v }},
	{"Kaizen_Title", func(k *kaizen.Kaizen, v string) { k.Title = v }},
	{"Present_Problem", func(k *kaizen.Kaizen, v string) { k.Problem = v }},
	{"Kaizen_Suggestion", func(k *kaizen.Kaizen, v string) { k.Suggestion = v }},
	{"username", func(k *kaizen.Kaizen, v string) { k.Username = v }},
	{"company", func(k *kaizen.Kaizen, v string) { k.Company = v }},
	{"status", func(k *kaizen.Kaizen, v string) { k.Status = v }},
	{"annualSavings", func(k *kaizen.Kaizen, v string) { k.AnnualSavings = v }},
	{"other", func(k *kaizen.Kaizen, v string) { k.Other = v }},
	{"impact", func(k *kaizen.Kaizen, v string) { k.Impact = v }},
	{"implementationCost", func(k *kaizen.Kaizen, v string) { k.ImplementationCost = v }},
	{"implementedAction", func(k *kaizen.Kaizen, v string) { k.ImplementedAction = v }},
	{"teamMembers", func(k *kaizen.Kaizen, v string) { k.TeamMembers = v }},
	{"benefitscore", func(k *kaizen.Kaizen, v string) { k.BenefitScore = v }},
}

func recordFromForm(form url.Values) kaizen.Kaizen {
	var k kaizen.Kaizen
	for _, f := range formFields {
		if v, ok := form[f.name]; ok && len(v) > 0 {
			f.set(&k, v[0])
		}
	}
	if b, ok := benefitsFromForm(form); ok {
		k.Benefits = b
	}
	return k
}

func detailFromForm(form url.Values) kaizen.Detail {
	opt := func(name string) *string {
		if v, ok := form[name]; ok && len(v) > 0 {
			s := v[0]
			return &s
		}
		return nil
	}
	d := kaizen.Detail{
		TeamMembers:        opt("teamMembers"),
		ImplementationCost: opt("implementationCost"),
		AnnualSavings:      opt("annualSavings"),
		ImplementedAction:  opt("implementedAction"),
		Impact:             opt("impact"),
		Status:             opt("status"),
		Other:              opt("other"),
	}
	if b, ok := benefitsFromForm(form); ok {
		d.Benefits = &b
	}
	return d
}

// benefitsFromForm accepts repeated fields, "benefits[]", a JSON array or a
// comma separated list.
func benefitsFromForm(form url.Values) (kaizen.Benefits, bool) {
	values, ok := form["benefits"]
	if !ok {
		values, ok = form["benefits[]"]
	}
	if !ok {
		return nil, false
	}
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var list []string
		if err := json.Unmarshal([]byte(values[0]), &list); err == nil {
			return kaizen.Benefits(list), true
		}
	}
	return splitBenefits(values), true
}

func splitBenefits(values []string) kaizen.Benefits {
	out := kaizen.Benefits{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
