package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var indexTmpl *template.Template

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	indexTmpl, err = template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// Route is one entry of the route listing on the index page.
type Route struct {
	Label string
	Path  string
}

type IndexData struct {
	Title  string
	Routes []Route
}

// DefaultIndex lists the API routes served by the climate feature.
func DefaultIndex() *IndexData {
	return &IndexData{
		Title: "Hawaii Climate API",
		Routes: []Route{
			{Label: "Precipitation Data", Path: "/api/v1.0/precipitation"},
			{Label: "List of Stations", Path: "/api/v1.0/stations"},
			{Label: "Temperature Observations of 2016 - 2017", Path: "/api/v1.0/tobs"},
			{Label: "Temperature Stat from Start Date (yyyy-mm-dd)", Path: "/api/v1.0/<start>"},
			{Label: "Temperature Stat range Start - End Date (yyyy-mm-dd)", Path: "/api/v1.0/<start>/<end>"},
		},
	}
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if indexTmpl == nil {
		return errors.New("index template not loaded: call views.LoadTemplates during startup")
	}
	return indexTmpl.ExecuteTemplate(w, "index.html", data)
}
