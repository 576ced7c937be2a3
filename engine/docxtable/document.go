package docxtable

import "encoding/xml"

// documentXML is the part of word/document.xml holding tables.
type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    bodyXML  `xml:"body"`
}

type bodyXML struct {
	Tables []tableXML `xml:"tbl"`
}

// tableXML is a <w:tbl> element.
type tableXML struct {
	Grid tableGridXML  `xml:"tblGrid"`
	Rows []tableRowXML `xml:"tr"`
}

type tableGridXML struct {
	Cols []struct{} `xml:"gridCol"`
}

// tableRowXML is a <w:tr> element.
type tableRowXML struct {
	Properties rowPropsXML    `xml:"trPr"`
	Cells      []tableCellXML `xml:"tc"`
}

type rowPropsXML struct {
	GridBefore valXML `xml:"gridBefore"`
	GridAfter  valXML `xml:"gridAfter"`
}

// tableCellXML is a <w:tc> element.
type tableCellXML struct {
	Properties cellPropsXML   `xml:"tcPr"`
	Paragraphs []paragraphXML `xml:"p"`
	Tables     []tableXML     `xml:"tbl"`
}

type cellPropsXML struct {
	GridSpan valXML     `xml:"gridSpan"`
	VMerge   *vMergeXML `xml:"vMerge"`
}

// vMergeXML marks a vertically merged cell. An empty val continues the
// merge started above.
type vMergeXML struct {
	Val string `xml:"val,attr"`
}

type valXML struct {
	Val string `xml:"val,attr"`
}

// paragraphXML is a <w:p> element kept as a generic tree so runs nested in
// hyperlinks, smart tags and field results stay in document order.
type paragraphXML = nodeXML

type nodeXML struct {
	XMLName xml.Name
	Value   string    `xml:",chardata"`
	Nodes   []nodeXML `xml:",any"`
}
