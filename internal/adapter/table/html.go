package table

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var page = template.Must(template.New("table").Parse(`<html>
<head>
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<table border="1" class="dataframe">
  <thead>
    <tr style="text-align: right;">
{{- range .Header}}
      <th>{{.}}</th>
{{- end}}
    </tr>
  </thead>
  <tbody>
{{- range .Rows}}
    <tr>
{{- range .}}
      <td>{{.}}</td>
{{- end}}
    </tr>
{{- end}}
  </tbody>
</table>
</body>
</html>
`))

// textColumns are rendered verbatim; every other column is numeric.
var textColumns = map[string]bool{"variable": true, "unit": true, "trend": true}

// RenderHTML rewrites htmlPath from the full contents of the CSV table at
// csvPath. Float cells use three significant digits, integer cells are
// verbatim and empty numeric cells read NaN.
func RenderHTML(csvPath, htmlPath string) error {
	records, err := ReadCSV(csvPath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("render %s: empty table", csvPath)
	}

	header := records[0]
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		cells := make([]string, len(rec))
		for i, c := range rec {
			if i < len(header) && textColumns[header[i]] {
				cells[i] = c
				continue
			}
			cells[i] = formatCell(c)
		}
		rows = append(rows, cells)
	}

	data := struct {
		Title  string
		Header []string
		Rows   [][]string
	}{
		Title:  strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath)),
		Header: header,
		Rows:   rows,
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", htmlPath, err)
	}
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", htmlPath, err)
	}
	return nil
}

func formatCell(c string) string {
	if c == "" {
		return "NaN"
	}
	if _, err := strconv.Atoi(c); err == nil {
		return c
	}
	if f, err := strconv.ParseFloat(c, 64); err == nil {
		return fmt.Sprintf("%.3g", f)
	}
	return c
}
