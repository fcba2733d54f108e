// Package dicomgen renders synthesized test rows into real DICOM files:
// one series per row, a deterministic study per acquisition, and a text
// overlay on each frame identifying the row it came from. It is the
// encoder side of the schema tooling; it never mutates the rows it is
// given.
package dicomgen

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	randv2 "math/rand/v2"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomschema/internal/dict"
	"github.com/mrsinham/dicomschema/internal/schema"
	"github.com/mrsinham/dicomschema/internal/synthesis"
	"github.com/mrsinham/dicomschema/internal/util"
)

// mrImageStorageUID is the SOP class written for generated instances.
const mrImageStorageUID = "1.2.840.10008.5.1.4.1.1.4"

// Options controls test DICOM generation.
type Options struct {
	OutputDir string
	Width     int // frame width in pixels (default 128)
	Height    int // frame height in pixels (default 128)
	Workers   int // parallel writers (0 = CPU cores)
	Quiet     bool
}

// GeneratedFile describes one written DICOM file.
type GeneratedFile struct {
	Path           string
	StudyUID       string
	SeriesUID      string
	SOPInstanceUID string
	SeriesNumber   int
	InstanceNumber int
}

// imageTask contains everything needed to write a single instance.
type imageTask struct {
	index     int
	filePath  string
	overlay   string
	pixelSeed uint64
	width     int
	height    int
	metadata  []*dicom.Element

	studyUID       string
	seriesUID      string
	sopInstanceUID string
	seriesNumber   int
}

// GenerateTestDicoms writes one DICOM instance per synthesized row under
// opts.OutputDir, in SE<n>/ series directories. Identity (patient, study,
// series and instance UIDs) derives deterministically from the acquisition
// ID, so regenerating the same rows reproduces identical files. Fields
// with no resolvable dictionary entry are omitted.
func GenerateTestDicoms(acq schema.Acquisition, rows []synthesis.Row, fields []schema.Field, opts Options) ([]GeneratedFile, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to generate")
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 128
	}
	if height <= 0 {
		height = 128
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	// Resolve each field's dictionary entry once.
	d := dict.New()
	defs := map[string]*dict.FieldDef{}
	for _, f := range fields {
		def := d.ByTag(f.Tag)
		if def == nil {
			def = d.ByKeyword(f.Name)
		}
		if def != nil {
			defs[f.Name] = def
		}
	}

	// Deterministic patient identity from the acquisition ID.
	h := fnv.New64a()
	_, _ = h.Write([]byte(acq.ID))
	rng := randv2.New(randv2.NewPCG(h.Sum64(), h.Sum64()))

	patientSex := []string{"M", "F"}[rng.IntN(2)]
	patientBirthDate := fmt.Sprintf("%04d%02d%02d", rng.IntN(51)+1950, rng.IntN(12)+1, rng.IntN(28)+1)
	patientID := fmt.Sprintf("PID%06d", rng.IntN(900000)+100000)
	patientName := util.GeneratePatientName(patientSex, rng)
	studyUID := util.GenerateDeterministicUID(acq.ID + "_study")
	studyDate := fmt.Sprintf("%04d%02d%02d", rng.IntN(5)+2020, rng.IntN(12)+1, rng.IntN(28)+1)

	// Phase 1: build all tasks sequentially (keeps output deterministic).
	tasks := make([]imageTask, 0, len(rows))
	for i, row := range rows {
		seriesNumber := i + 1
		seriesUID := util.GenerateDeterministicUID(fmt.Sprintf("%s_series_%d", acq.ID, seriesNumber))
		sopInstanceUID := util.GenerateDeterministicUID(fmt.Sprintf("%s_series_%d_instance_1", acq.ID, seriesNumber))

		seriesDescription := acq.SeriesDescription
		if seriesDescription == "" {
			seriesDescription = fmt.Sprintf("Series %d", seriesNumber)
		}

		// Row values first, so the schema's fields win over defaults.
		metadata := make([]*dicom.Element, 0, len(row)+24)
		written := map[tag.Tag]bool{}
		for _, f := range fields {
			def, ok := defs[f.Name]
			if !ok {
				continue
			}
			elem, ok := elementForValue(def, row[f.Name])
			if !ok {
				continue
			}
			metadata = append(metadata, elem)
			written[def.Tag] = true
		}

		for _, std := range []struct {
			tag   tag.Tag
			value interface{}
		}{
			{tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}},
			{tag.PatientName, []string{patientName}},
			{tag.PatientID, []string{patientID}},
			{tag.PatientBirthDate, []string{patientBirthDate}},
			{tag.PatientSex, []string{patientSex}},
			{tag.StudyInstanceUID, []string{studyUID}},
			{tag.StudyDate, []string{studyDate}},
			{tag.StudyDescription, []string{acq.ProtocolName}},
			{tag.ProtocolName, []string{acq.ProtocolName}},
			{tag.SeriesInstanceUID, []string{seriesUID}},
			{tag.SeriesNumber, []string{fmt.Sprintf("%d", seriesNumber)}},
			{tag.SeriesDescription, []string{seriesDescription}},
			{tag.Modality, []string{"MR"}},
			{tag.SOPInstanceUID, []string{sopInstanceUID}},
			{tag.SOPClassUID, []string{mrImageStorageUID}},
			{tag.InstanceNumber, []string{"1"}},
			{tag.Rows, []int{height}},
			{tag.Columns, []int{width}},
			{tag.BitsAllocated, []int{16}},
			{tag.BitsStored, []int{16}},
			{tag.HighBit, []int{15}},
			{tag.PixelRepresentation, []int{0}},
			{tag.SamplesPerPixel, []int{1}},
			{tag.PhotometricInterpretation, []string{"MONOCHROME2"}},
		} {
			if written[std.tag] {
				continue
			}
			metadata = append(metadata, mustNewElement(std.tag, std.value))
		}

		seriesDir := filepath.Join(opts.OutputDir, fmt.Sprintf("SE%03d", seriesNumber))
		if err := os.MkdirAll(seriesDir, 0755); err != nil {
			return nil, fmt.Errorf("create series directory: %w", err)
		}

		pixelSeedHash := fnv.New64a()
		_, _ = fmt.Fprintf(pixelSeedHash, "%s_pixel_%d", acq.ID, seriesNumber)

		tasks = append(tasks, imageTask{
			index:          i,
			filePath:       filepath.Join(seriesDir, "IMG0001.dcm"),
			overlay:        fmt.Sprintf("Row %d/%d", seriesNumber, len(rows)),
			pixelSeed:      pixelSeedHash.Sum64(),
			width:          width,
			height:         height,
			metadata:       metadata,
			studyUID:       studyUID,
			seriesUID:      seriesUID,
			sopInstanceUID: sopInstanceUID,
			seriesNumber:   seriesNumber,
		})
	}

	// Phase 2: write files in parallel.
	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(tasks) {
		numWorkers = len(tasks)
	}

	taskChan := make(chan imageTask, len(tasks))
	errChan := make(chan error, len(tasks))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				if err := writeInstance(task); err != nil {
					errChan <- fmt.Errorf("write instance %d: %w", task.index+1, err)
				}
			}
		}()
	}
	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)
	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, err
	}

	files := make([]GeneratedFile, len(tasks))
	for i, task := range tasks {
		files[i] = GeneratedFile{
			Path:           task.filePath,
			StudyUID:       task.studyUID,
			SeriesUID:      task.seriesUID,
			SOPInstanceUID: task.sopInstanceUID,
			SeriesNumber:   task.seriesNumber,
			InstanceNumber: 1,
		}
	}

	if !opts.Quiet {
		fmt.Printf("✓ %d DICOM files created in: %s/\n", len(files), opts.OutputDir)
	}
	return files, nil
}

// writeInstance renders the pixel frame and writes one DICOM file.
func writeInstance(task imageTask) error {
	nativeFrame := newNoiseFrame(task.width, task.height, task.pixelSeed)
	drawTextOverlay(nativeFrame, task.width, task.height, task.overlay)

	pixelDataInfo := dicom.PixelDataInfo{
		Frames: []*frame.Frame{{Encapsulated: false, NativeData: nativeFrame}},
	}

	elements := make([]*dicom.Element, len(task.metadata)+1)
	copy(elements, task.metadata)
	elements[len(task.metadata)] = mustNewElement(tag.PixelData, pixelDataInfo)

	f, err := os.Create(task.filePath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return dicom.Write(f, dicom.Dataset{Elements: elements})
}
