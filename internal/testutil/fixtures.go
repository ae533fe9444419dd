package testutil

import "golang.org/x/text/encoding/charmap"

// The fixtures below describe one event published three times, the way
// timing software does on race day: a snapshot while runners are out, a delta
// once the last H21 runner finished, and the complete official list.

// SnapshotResultList is taken at 12:00 with one H21 runner still on course.
const SnapshotResultList = `<?xml version="1.0" encoding="UTF-8"?>
<ResultList xmlns="http://www.orienteering.org/datastandard/3.0" iofVersion="3.0"
    createTime="2024-04-20T12:00:00+02:00" creator="OE12" status="Snapshot">
  <Event>
    <Id>1001</Id>
    <Name>Spring Cup 2024</Name>
    <StartTime><Date>2024-04-20</Date><Time>10:00:00+02:00</Time></StartTime>
    <Status>Sanctioned</Status>
    <Classification>Regional</Classification>
    <Form>Individual</Form>
    <Organiser><Name>Göteborgs OF</Name><Country code="SWE">Sweden</Country></Organiser>
  </Event>
  <ClassResult>
    <Class sex="M"><Id>1</Id><Name>H21</Name></Class>
    <Course><Length>5200</Length><Climb>120</Climb><NumberOfControls>3</NumberOfControls></Course>
    <PersonResult>
      <Person sex="M"><Name><Family>Berg</Family><Given>Lars</Given></Name><BirthDate>1990-05-01</BirthDate></Person>
      <Organisation><Name>IFK Göteborg</Name><ShortName>IFKG</ShortName></Organisation>
      <Result>
        <BibNumber>102</BibNumber>
        <StartTime>2024-04-20T10:02:00+02:00</StartTime>
        <FinishTime>2024-04-20T10:43:00+02:00</FinishTime>
        <Time>2460</Time>
        <Status>OK</Status>
        <SplitTime><ControlCode>31</ControlCode><Time>620</Time></SplitTime>
        <SplitTime><ControlCode>32</ControlCode><Time>1350</Time></SplitTime>
        <SplitTime><ControlCode>33</ControlCode><Time>2100</Time></SplitTime>
        <ControlCard>500102</ControlCard>
      </Result>
    </PersonResult>
    <PersonResult>
      <Person sex="M"><Name><Family>Nilsson</Family><Given>Erik</Given></Name><BirthDate>1992-03-14</BirthDate></Person>
      <Organisation><Name>OK Linné</Name></Organisation>
      <Result>
        <BibNumber>101</BibNumber>
        <StartTime>2024-04-20T10:30:00+02:00</StartTime>
        <Status>Active</Status>
        <SplitTime><ControlCode>31</ControlCode><Time>600</Time></SplitTime>
        <ControlCard>500101</ControlCard>
      </Result>
    </PersonResult>
  </ClassResult>
</ResultList>
`

// DeltaResultList carries only the H21 runner who finished after the snapshot.
const DeltaResultList = `<?xml version="1.0" encoding="UTF-8"?>
<ResultList xmlns="http://www.orienteering.org/datastandard/3.0" iofVersion="3.0"
    createTime="2024-04-20T12:30:00+02:00" creator="OE12" status="Delta">
  <Event>
    <Name>Spring Cup 2024</Name>
  </Event>
  <ClassResult>
    <Class sex="M"><Name>H21</Name></Class>
    <PersonResult>
      <Person sex="M"><Name><Family>Nilsson</Family><Given>Erik</Given></Name><BirthDate>1992-03-14</BirthDate></Person>
      <Organisation><Name>OK Linné</Name></Organisation>
      <Result>
        <BibNumber>101</BibNumber>
        <StartTime>2024-04-20T10:30:00+02:00</StartTime>
        <FinishTime>2024-04-20T11:10:00+02:00</FinishTime>
        <Time>2400</Time>
        <Status>OK</Status>
        <SplitTime><ControlCode>31</ControlCode><Time>600</Time></SplitTime>
        <SplitTime><ControlCode>32</ControlCode><Time>1300</Time></SplitTime>
        <SplitTime><ControlCode>33</ControlCode><Time>2000</Time></SplitTime>
        <ControlCard>500101</ControlCard>
      </Result>
    </PersonResult>
  </ClassResult>
</ResultList>
`

// CompleteResultList is the official list published after the event.
const CompleteResultList = `<?xml version="1.0" encoding="UTF-8"?>
<ResultList xmlns="http://www.orienteering.org/datastandard/3.0" iofVersion="3.0"
    createTime="2024-04-20T14:00:00+02:00" creator="OE12" status="Complete">
  <Event>
    <Id>1001</Id>
    <Name>Spring Cup 2024</Name>
    <StartTime><Date>2024-04-20</Date></StartTime>
    <Status>Sanctioned</Status>
    <Classification>Regional</Classification>
    <Form>Individual</Form>
    <Organiser><Name>Göteborgs OF</Name></Organiser>
  </Event>
  <ClassResult timeResolution="1">
    <Class sex="M" resultListMode="Default"><Id>1</Id><Name>H21</Name><ShortName>H21E</ShortName></Class>
    <Course><Name>Long</Name><Length>5200</Length><Climb>120</Climb><NumberOfControls>3</NumberOfControls></Course>
    <PersonResult>
      <Person sex="M"><Name><Family>Nilsson</Family><Given>Erik</Given></Name><BirthDate>1992-03-14</BirthDate></Person>
      <Organisation><Name>OK Linné</Name></Organisation>
      <Result>
        <BibNumber>101</BibNumber>
        <StartTime>2024-04-20T10:30:00+02:00</StartTime>
        <FinishTime>2024-04-20T11:10:00+02:00</FinishTime>
        <Time>2400</Time>
        <TimeBehind>0</TimeBehind>
        <Position>1</Position>
        <Status>OK</Status>
        <SplitTime><ControlCode>31</ControlCode><Time>600</Time></SplitTime>
        <SplitTime><ControlCode>32</ControlCode><Time>1300</Time></SplitTime>
        <SplitTime><ControlCode>33</ControlCode><Time>2000</Time></SplitTime>
        <ControlCard>500101</ControlCard>
      </Result>
    </PersonResult>
    <PersonResult>
      <Person sex="M"><Name><Family>Berg</Family><Given>Lars</Given></Name><BirthDate>1990-05-01</BirthDate></Person>
      <Organisation><Name>IFK Göteborg</Name><ShortName>IFKG</ShortName></Organisation>
      <Result>
        <BibNumber>102</BibNumber>
        <StartTime>2024-04-20T10:02:00+02:00</StartTime>
        <FinishTime>2024-04-20T10:43:00+02:00</FinishTime>
        <Time>2460</Time>
        <TimeBehind>60</TimeBehind>
        <Position>2</Position>
        <Status>OK</Status>
        <SplitTime><ControlCode>31</ControlCode><Time>620</Time></SplitTime>
        <SplitTime><ControlCode>32</ControlCode><Time>1350</Time></SplitTime>
        <SplitTime><ControlCode>33</ControlCode><Time>2100</Time></SplitTime>
        <ControlCard>500102</ControlCard>
      </Result>
    </PersonResult>
    <PersonResult>
      <Person sex="M"><Name><Family>Ek</Family><Given>Johan</Given></Name></Person>
      <Organisation><Name>OK Linné</Name></Organisation>
      <Result>
        <BibNumber>103</BibNumber>
        <StartTime>2024-04-20T10:04:00+02:00</StartTime>
        <FinishTime>2024-04-20T10:44:00+02:00</FinishTime>
        <Time>2400</Time>
        <Status>MissingPunch</Status>
        <SplitTime><ControlCode>31</ControlCode><Time>640</Time></SplitTime>
        <SplitTime status="Missing"><ControlCode>32</ControlCode></SplitTime>
        <SplitTime><ControlCode>33</ControlCode><Time>2010</Time></SplitTime>
        <ControlCard>500103</ControlCard>
      </Result>
    </PersonResult>
  </ClassResult>
  <ClassResult>
    <Class sex="F"><Id>2</Id><Name>D21</Name></Class>
    <Course><Length>4300</Length><Climb>90</Climb><NumberOfControls>2</NumberOfControls></Course>
    <PersonResult>
      <Person sex="F"><Name><Family>Åström</Family><Given>Maja</Given></Name><BirthDate>1995-11-30</BirthDate></Person>
      <Organisation><Name>IFK Göteborg</Name></Organisation>
      <Result>
        <BibNumber>201</BibNumber>
        <Time>2700</Time>
        <Position>1</Position>
        <Status>OK</Status>
        <SplitTime><ControlCode>41</ControlCode><Time>900</Time></SplitTime>
        <SplitTime><ControlCode>42</ControlCode><Time>1800</Time></SplitTime>
      </Result>
    </PersonResult>
  </ClassResult>
</ResultList>
`

// Latin1ResultList is a minimal complete list encoded as ISO-8859-1, as
// older timing software still writes them.
func Latin1ResultList() []byte {
	const doc = `<?xml version="1.0" encoding="ISO-8859-1"?>
<ResultList iofVersion="3.0" createTime="2024-05-01T18:00:00Z" creator="MeOS" status="Complete">
  <Event><Name>Vårträffen</Name></Event>
  <ClassResult>
    <Class><Name>Öppen</Name></Class>
    <PersonResult>
      <Person><Name><Family>Åström</Family><Given>Maja</Given></Name></Person>
      <Result><Time>1800</Time><Status>OK</Status></Result>
    </PersonResult>
  </ClassResult>
</ResultList>
`
	encoded, err := charmap.ISO8859_1.NewEncoder().String(doc)
	if err != nil {
		panic(err)
	}
	return []byte(encoded)
}
