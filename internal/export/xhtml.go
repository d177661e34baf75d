package export

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

const xhtmlPreamble = `<?xml version="1.0" encoding="UTF-8"?>
<?xml-stylesheet type="text/xsl" href="artifacts.xsl"?>
`

// artifactsXSL renders the document tree as a table in a browser.
const artifactsXSL = `<?xml version="1.0" encoding="UTF-8"?>
<xsl:stylesheet version="1.0" xmlns:xsl="http://www.w3.org/1999/XSL/Transform">
  <xsl:template match="/ArtifactSet">
    <html>
      <head><link rel="stylesheet" href="artifacts.css"/></head>
      <body>
        <h1>Trace artifacts</h1>
        <xsl:for-each select="Artifact">
          <div class="artifact">
            <h2><xsl:value-of select="ExecutableName"/></h2>
            <table>
              <xsl:for-each select="*">
                <tr><th><xsl:value-of select="name()"/></th><td><xsl:value-of select="."/></td></tr>
              </xsl:for-each>
            </table>
          </div>
        </xsl:for-each>
      </body>
    </html>
  </xsl:template>
</xsl:stylesheet>
`

const artifactsCSS = `body { font-family: sans-serif; margin: 2em; }
.artifact { margin-bottom: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.6em; text-align: left; }
th { background: #f0f0f0; }
`

// xhtmlSink writes one container element per artifact inside a single
// ArtifactSet root, with the stylesheet assets copied alongside.
type xhtmlSink struct {
	f *os.File
}

func openXHTML(path string) (*xhtmlSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: create %s: %w", path, err)
	}
	if _, err := f.WriteString(xhtmlPreamble + "<ArtifactSet>\n"); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: write preamble %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	assets := []struct {
		name string
		body string
	}{
		{"artifacts.xsl", artifactsXSL},
		{"artifacts.css", artifactsCSS},
	}
	for _, a := range assets {
		if err := os.WriteFile(filepath.Join(dir, a.name), []byte(a.body), 0o644); err != nil {
			f.Close()
			return nil, fmt.Errorf("export: write asset %s: %w", a.name, err)
		}
	}
	return &xhtmlSink{f: f}, nil
}

func (s *xhtmlSink) write(r Record) error {
	data, err := xml.MarshalIndent(r, "  ", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = s.f.Write(data)
	return err
}

func (s *xhtmlSink) close() error {
	_, writeErr := s.f.WriteString("</ArtifactSet>\n")
	if err := s.f.Close(); err != nil {
		return err
	}
	return writeErr
}
