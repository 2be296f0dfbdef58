package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Catalog — корневой элемент документа YML.
type Catalog struct {
	XMLName xml.Name `xml:"yml_catalog"`
	Date    string   `xml:"date,attr"`
	Shop    Shop     `xml:"shop"`
}

// Shop — информация о магазине, категории и предложения.
type Shop struct {
	Name        string     `xml:"name"`
	Company     string     `xml:"company"`
	URL         string     `xml:"url"`
	Email       string     `xml:"email"`
	Description string     `xml:"description"`
	Currencies  []Currency `xml:"currencies>currency"`
	Categories  []Category `xml:"categories>category"`
	Offers      []Offer    `xml:"offers>offer"`
}

// Currency — валюта фида.
type Currency struct {
	ID   string `xml:"id,attr"`
	Rate string `xml:"rate,attr"`
}

// Category — категория в фиде. ParentID пропускается для категорий
// верхнего уровня.
type Category struct {
	ID       int64  `xml:"id,attr"`
	ParentID int64  `xml:"parentId,attr,omitempty"`
	Title    string `xml:",chardata"`
}

// Offer — предложение (услуга), построенное из материала.
type Offer struct {
	ID          int64   `xml:"id,attr"`
	Name        string  `xml:"name"`
	CategoryID  int64   `xml:"categoryId"`
	URL         string  `xml:"url"`
	Price       Price   `xml:"price"`
	CurrencyID  string  `xml:"currencyId"`
	SalesNotes  string  `xml:"sales_notes"`
	Delivery    bool    `xml:"delivery"`
	Picture     string  `xml:"picture,omitempty"`
	Description string  `xml:"description"`
	Vendor      string  `xml:"vendor"`
	Params      []Param `xml:"param"`
}

// Price — цена "от" (услуги с минимальной ценой).
type Price struct {
	From  bool   `xml:"from,attr"`
	Value string `xml:",chardata"`
}

// Param — характеристика предложения.
type Param struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Marshal сериализует документ с XML-декларацией.
func (c *Catalog) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}
