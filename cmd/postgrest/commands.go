package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-postgrest-client/internal/wire"
	"github.com/robert-malhotra/go-postgrest-client/pkg/client"
	"github.com/robert-malhotra/go-postgrest-client/pkg/config"
	"github.com/robert-malhotra/go-postgrest-client/pkg/filter"
	"github.com/robert-malhotra/go-postgrest-client/pkg/model"
	"github.com/robert-malhotra/go-postgrest-client/pkg/query"
)

const (
	filterFlag    = "filter"
	selectFlag    = "select"
	dataFlag      = "data"
	returningFlag = "returning"
)

func newFilterFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    filterFlag,
		Aliases: []string{"f"},
		Usage:   "filter term such as age=gte.18 or name=not.in.(a,b) (repeatable)",
	}
}

func newSelectFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    selectFlag,
		Aliases: []string{"s"},
		Usage:   "comma separated columns to return",
	}
}

func newDataFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    dataFlag,
		Aliases: []string{"d"},
		Usage:   "JSON object or array to send, or - to read it from stdin",
		Value:   "-",
	}
}

func newReturningFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    returningFlag,
		Aliases: []string{"r"},
		Usage:   "what the server sends back: minimal, representation or url",
	}
}

func paginationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "maximum number of rows", Value: -1},
		&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "rows to skip", Value: -1},
	}
}

func newSelectCommand() *cli.Command {
	return &cli.Command{
		Name:      "select",
		Usage:     "Fetch rows of a table or view",
		ArgsUsage: "<entity>",
		Flags: append([]cli.Flag{
			newSelectFlag(),
			newFilterFlag(),
			&cli.BoolFlag{Name: "single", Usage: "expect exactly one row and print it as an object"},
		}, paginationFlags()...),
		Action: selectAction,
	}
}

func newInsertCommand() *cli.Command {
	return &cli.Command{
		Name:      "insert",
		Usage:     "Create one row, or one per element of a JSON array",
		ArgsUsage: "<entity>",
		Flags:     []cli.Flag{newDataFlag(), newReturningFlag(), newSelectFlag()},
		Action:    insertAction,
	}
}

func newUpdateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Patch the rows matching the filters",
		ArgsUsage: "<entity>",
		Flags:     []cli.Flag{newDataFlag(), newFilterFlag(), newReturningFlag(), newSelectFlag()},
		Action:    updateAction,
	}
}

func newDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Remove the rows matching the filters",
		ArgsUsage: "<entity>",
		Flags: []cli.Flag{
			newFilterFlag(),
			&cli.BoolFlag{Name: "all", Usage: "allow a delete without filters"},
		},
		Action: deleteAction,
	}
}

func newURLCommand() *cli.Command {
	return &cli.Command{
		Name:      "url",
		Usage:     "Print the URL a select would request",
		ArgsUsage: "<entity>",
		Flags:     append([]cli.Flag{newSelectFlag(), newFilterFlag()}, paginationFlags()...),
		Action:    urlAction,
	}
}

func entityArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("expected 1 argument: entity")
	}
	return cmd.Args().First(), nil
}

func parseFilters(terms []string) ([]filter.Member, error) {
	members := make([]filter.Member, 0, len(terms))
	for _, term := range terms {
		nf, err := filter.ParseTerm(term)
		if err != nil {
			return nil, err
		}
		members = append(members, nf)
	}
	return members, nil
}

func splitColumns(s string) []string {
	var cols []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

func selectParams(cmd *cli.Command) (*client.SelectParams, error) {
	filters, err := parseFilters(cmd.StringSlice(filterFlag))
	if err != nil {
		return nil, err
	}
	p := &client.SelectParams{
		Select:  splitColumns(cmd.String(selectFlag)),
		Filters: filters,
	}
	if n := int(cmd.Int("limit")); n >= 0 {
		p.Limit = query.Limit(n)
	}
	if n := int(cmd.Int("offset")); n >= 0 {
		p.Offset = query.Offset(n)
	}
	return p, nil
}

func writeOptions(cmd *cli.Command) []client.RequestOption {
	if cols := splitColumns(cmd.String(selectFlag)); len(cols) > 0 {
		return []client.RequestOption{client.Columns(cols...)}
	}
	return nil
}

func selectAction(ctx context.Context, cmd *cli.Command) error {
	entity, err := entityArg(cmd)
	if err != nil {
		return err
	}
	p, err := selectParams(cmd)
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("single") {
		var row any
		if s.declared(entity) {
			row, err = s.models.SelectOne(ctx, entity, p)
		} else {
			row, err = s.client.SelectOne(ctx, entity, p)
		}
		if err != nil {
			return err
		}
		return printJSON(stdout, row)
	}

	if s.declared(entity) {
		recs, err := s.models.Select(ctx, entity, p)
		if err != nil {
			return err
		}
		return printRows(stdout, recs)
	}
	rows, err := s.client.Select(ctx, entity, p)
	if err != nil {
		return err
	}
	return printRows(stdout, rows)
}

func insertAction(ctx context.Context, cmd *cli.Command) error {
	entity, err := entityArg(cmd)
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	returning, err := client.ParseReturning(returningOrProfile(cmd, s.cfg))
	if err != nil {
		return err
	}
	body, err := readData(cmd, stdin)
	if err != nil {
		return err
	}
	if body, err = s.validate(entity, body); err != nil {
		return err
	}

	res, err := s.client.Insert(ctx, entity, body, returning, writeOptions(cmd)...)
	if err != nil {
		return err
	}
	switch returning {
	case client.ReturnRepresentation:
		return printRows(stdout, res.Rows)
	case client.ReturnURL:
		_, err := fmt.Fprintln(stdout, res.Location.String())
		return err
	}
	return nil
}

func updateAction(ctx context.Context, cmd *cli.Command) error {
	entity, err := entityArg(cmd)
	if err != nil {
		return err
	}
	filters, err := parseFilters(cmd.StringSlice(filterFlag))
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	returning, err := client.ParseReturning(returningOrProfile(cmd, s.cfg))
	if err != nil {
		return err
	}
	body, err := readData(cmd, stdin)
	if err != nil {
		return err
	}
	patch, ok := body.(map[string]any)
	if !ok {
		return fmt.Errorf("update data must be a JSON object")
	}
	if s.declared(entity) {
		rec, err := s.record(entity, patch)
		if err != nil {
			return err
		}
		recs, err := s.models.Update(ctx, entity, rec, filters, returning, writeOptions(cmd)...)
		if err != nil {
			return err
		}
		if returning == client.ReturnRepresentation {
			return printRows(stdout, recs)
		}
		return nil
	}

	rows, err := s.client.Update(ctx, entity, patch, filters, returning, writeOptions(cmd)...)
	if err != nil {
		return err
	}
	if returning == client.ReturnRepresentation {
		return printRows(stdout, rows)
	}
	return nil
}

func deleteAction(ctx context.Context, cmd *cli.Command) error {
	entity, err := entityArg(cmd)
	if err != nil {
		return err
	}
	filters, err := parseFilters(cmd.StringSlice(filterFlag))
	if err != nil {
		return err
	}
	if len(filters) == 0 && !cmd.Bool("all") {
		return fmt.Errorf("refusing to delete every row of %s without --all", entity)
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if s.declared(entity) {
		return s.models.Delete(ctx, entity, filters)
	}
	return s.client.Delete(ctx, entity, filters)
}

func urlAction(_ context.Context, cmd *cli.Command) error {
	entity, err := entityArg(cmd)
	if err != nil {
		return err
	}
	p, err := selectParams(cmd)
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	u, err := s.client.TargetURL(entity, p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, u.String())
	return err
}

func returningOrProfile(cmd *cli.Command, cfg *config.Config) string {
	if r := cmd.String(returningFlag); r != "" || cfg == nil {
		return r
	}
	return cfg.Returning
}

// readData decodes --data, or stdin when it is "-".
func readData(cmd *cli.Command, stdin io.Reader) (any, error) {
	var r io.Reader = stdin
	if data := cmd.String(dataFlag); data != "-" {
		r = strings.NewReader(data)
	}
	var body any
	if err := wire.Decode(r, &body); err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	return body, nil
}

// record decodes obj against the schema declared for entity.
func (s *session) record(entity string, obj map[string]any) (*model.Record, error) {
	schema, err := s.models.Registry().Lookup(entity)
	if err != nil {
		return nil, err
	}
	return model.FromJSON(schema, nil, obj)
}

// validate checks a write body against the declared schema, converting
// values such as uuids and timestamps on the way. Undeclared entities pass
// through unchanged.
func (s *session) validate(entity string, body any) (any, error) {
	if !s.declared(entity) {
		return body, nil
	}
	check := func(v any) (map[string]any, error) {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s rows must be JSON objects, got %T", entity, v)
		}
		rec, err := s.record(entity, obj)
		if err != nil {
			return nil, err
		}
		return rec.ShallowMap(), nil
	}

	switch v := body.(type) {
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, elem := range v {
			row, err := check(elem)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			out = append(out, row)
		}
		return out, nil
	default:
		return check(v)
	}
}
