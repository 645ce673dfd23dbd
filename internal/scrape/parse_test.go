package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestOrgName_SiteTitleHeading(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<html><head><title>Something Else</title></head>
		<body><h1 class="site-title">Kementerian Digital</h1></body></html>`)

	assert.Equal(t, "Kementerian Digital", orgName(doc, "https://digital.gov.my/contact"))
}

func TestOrgName_TitleSeparator(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<html><head><title>Universiti Malaya | Official Portal</title></head><body></body></html>`)

	assert.Equal(t, "Universiti Malaya", orgName(doc, "https://um.edu.my"))
}

func TestOrgName_HostFallback(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<html><body></body></html>`)

	assert.Equal(t, "MOND", orgName(doc, "https://www.mond.gov.my/directory"))
}

func TestContactsFromTables_HeaderColumns(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
		<tr><th>Nama</th><th>Jawatan</th><th>Emel</th><th>Telefon</th></tr>
		<tr><td>Ahmad Faizal</td><td>Pengarah</td><td>faizal@moh.gov.my</td><td>0388881234</td></tr>
		<tr><td>Siti Aminah</td><td>Timbalan Pengarah</td><td>siti@moh.gov.my</td><td>0388885678</td></tr>
	</table>`)

	got := contactsFromTables(doc, model.SourceGovernmentScrape, "Kementerian Kesihatan", "https://moh.gov.my/direktori")

	require.Len(t, got, 2)
	assert.Equal(t, model.SourceGovernmentScrape, got[0].Source)
	assert.Equal(t, "Kementerian Kesihatan", got[0].Data["organization"])
	assert.Equal(t, "Ahmad Faizal", got[0].Data["person_name"])
	assert.Equal(t, "Pengarah", got[0].Data["role"])
	assert.Equal(t, "faizal@moh.gov.my", got[0].Data["email"])
	assert.Equal(t, "0388881234", got[0].Data["phone"])
	assert.Equal(t, "Siti Aminah", got[1].Data["person_name"])
}

func TestContactsFromTables_NoHeaderFallsBackToPositions(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
		<tr><th>Maklumat</th><th>Butiran</th></tr>
		<tr><td>Lim Wei Ming</td><td>Setiausaha - lim@treasury.gov.my</td></tr>
	</table>`)

	got := contactsFromTables(doc, model.SourceGovernmentScrape, "Perbendaharaan", "https://treasury.gov.my")

	require.Len(t, got, 1)
	assert.Equal(t, "Lim Wei Ming", got[0].Data["person_name"])
	assert.Equal(t, "lim@treasury.gov.my", got[0].Data["email"])
}

func TestContactsFromTables_SkipsShortRows(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table><tr><th>Nama</th></tr><tr><td>lonely cell</td></tr></table>`)

	got := contactsFromTables(doc, model.SourceGovernmentScrape, "X", "https://x.gov.my")

	assert.Empty(t, got)
}

func TestContactsFromStaffSections(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<div class="staff-directory">
		<div class="staff-member">
			<h4 class="name">Dr. Nurul Huda</h4>
			<p class="position">Dekan</p>
			<a href="mailto:nurul@ukm.edu.my">Email</a>
			<a href="tel:+60389215555">Call</a>
		</div>
		<div class="staff-member">
			<h4 class="name">Prof. Tan Chee Keong</h4>
			<p class="position">Timbalan Dekan</p>
		</div>
	</div>`)

	got := contactsFromStaffSections(doc, model.SourceUniversityScrape, "UKM", "https://ukm.edu.my/staff")

	require.Len(t, got, 2)
	assert.Equal(t, "Dr. Nurul Huda", got[0].Data["person_name"])
	assert.Equal(t, "Dekan", got[0].Data["role"])
	assert.Equal(t, "nurul@ukm.edu.my", got[0].Data["email"])
	assert.Equal(t, "+60389215555", got[0].Data["phone"])
	assert.Equal(t, "Prof. Tan Chee Keong", got[1].Data["person_name"])
}

func TestContactsFromStaffSections_HonorificFallback(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<ul class="management-team">
		<li>Puan Azizah Rahman
Ketua Unit Komunikasi
azizah@miti.gov.my</li>
	</ul>`)

	got := contactsFromStaffSections(doc, model.SourceGovernmentScrape, "MITI", "https://miti.gov.my/pengurusan")

	require.Len(t, got, 1)
	assert.Equal(t, "Azizah Rahman", got[0].Data["person_name"])
	assert.Equal(t, "azizah@miti.gov.my", got[0].Data["email"])
}

func TestContactFromContactSections(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<div id="contact-us">
		<p>Alamat: 12 Jalan Duta, Kuala Lumpur 50480</p>
		<p>Emel: info@jpm.gov.my</p>
		<p>Tel: 0380008000</p>
	</div>`)

	got := contactFromContactSections(doc, model.SourceGovernmentScrape, "JPM", "https://jpm.gov.my/hubungi")

	require.Len(t, got, 1)
	assert.Equal(t, "info@jpm.gov.my", got[0].Data["email"])
	assert.Equal(t, "0380008000", got[0].Data["phone"])
	assert.Equal(t, "12 Jalan Duta, Kuala Lumpur 50480", got[0].Data["address"])
}

func TestContactFromContactSections_NothingFound(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<div class="contact"><p>Coming soon.</p></div>`)

	got := contactFromContactSections(doc, model.SourceGovernmentScrape, "X", "https://x.gov.my")

	assert.Empty(t, got)
}

func TestDepartmentName(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<h1>Welcome</h1><h2>Fakulti Kejuruteraan</h2>`)

	assert.Equal(t, "Fakulti Kejuruteraan", departmentName(doc))
}
