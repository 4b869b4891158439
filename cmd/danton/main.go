// Command danton simulates tau leptons decaying in the Earth's atmosphere,
// originating from ultra-high-energy neutrinos, by forward or backward
// Monte-Carlo transport.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Raimer/danton"
)

var progname = "danton"

// help text, following the teacher's rnx2rtkp.go convention of a flat
// []string block searched by searchHelp(key) to back each flag's usage
// string.
var help = []string{
	"",
	" usage: danton [option]... [pid]",
	"",
	" Simulate taus decaying in the Earth atmosphere, originating from neutrinos",
	" with the given flavour (pid). With no mode flag, sample a diffuse flux",
	" over the sampler's configured angle/energy/altitude ranges.",
	"",
	" -?                print help",
	" -n count          number of Monte-Carlo events to run [10000]",
	" -m mode           run mode (forward|backward|grammage) [forward]",
	" -o file           set output file [stdout]",
	" --cos-theta-min=c minimum cos(theta), forward mode [0.15]",
	" --cos-theta-max=c maximum cos(theta), forward mode [0.25]",
	" --elevation-min=e minimum elevation angle, backward mode, degrees [-90]",
	" --elevation-max=e maximum elevation angle, backward mode, degrees [90]",
	" --altitude-min=a  minimum starting altitude, m [0]",
	" --altitude-max=a  maximum starting altitude, m [0]",
	" --energy-min=e    minimum primary energy, GeV [1e7]",
	" --energy-max=e    maximum primary energy, GeV [1e12]",
	" --energy-cut=e    kill particles below this energy, GeV [1e3]",
	" --primary-channel=pid restrict backward acceptance to this PDG primary [any]",
	" -t taus           stop after this many non-trivial tau decays [0:unbounded]",
	" --pem-no-sea      replace the ocean shell with rock [off]",
	" --flux-neutrino   enable the virtual detection-surface flux mode [off]",
	" --detector-radius=r radius of the flux-neutrino virtual surface, m",
	" --materials=file  material cache file [none]",
	" --trace-level=l   debug trace verbosity [0]",
	" --trace-file=file trace log destination [stderr]",
	" --metrics-push-url=url push a run summary to this Prometheus Pushgateway [off]",
	" --seed=s          deterministic PRNG seed [OS entropy]",
}

func searchHelp(key string) string {
	for _, v := range help {
		if strings.Contains(v, key) {
			return v
		}
	}
	return "no supported argument"
}

// showmsg mirrors the teacher's app-level message sink (rnx2rtkp.go's
// showmsg/ShowMsg_Ptr), used for non-fatal progress messages.
func showmsg(format string, v ...interface{}) int {
	fmt.Fprintf(os.Stderr, format+"\n", v...)
	return 0
}

func main() {
	var (
		events         int
		mode           string
		outfile        string
		cosThetaMin    float64
		cosThetaMax    float64
		elevationMin   float64
		elevationMax   float64
		altitudeMin    float64
		altitudeMax    float64
		energyMin      float64
		energyMax      float64
		energyCut      float64
		primaryChannel int
		tausRequested  int
		pemNoSea       bool
		fluxNeutrino   bool
		detectorRadius float64
		materialsFile  string
		traceLevel     int
		traceFile      string
		metricsURL     string
		seed           uint64
		showHelp       bool
	)

	flag.IntVar(&events, "n", 10000, searchHelp("-n "))
	flag.StringVar(&mode, "m", "forward", searchHelp("-m "))
	flag.StringVar(&outfile, "o", "", searchHelp("-o "))
	flag.Float64Var(&cosThetaMin, "cos-theta-min", 0.15, searchHelp("cos-theta-min"))
	flag.Float64Var(&cosThetaMax, "cos-theta-max", 0.25, searchHelp("cos-theta-max"))
	flag.Float64Var(&elevationMin, "elevation-min", -90, searchHelp("elevation-min"))
	flag.Float64Var(&elevationMax, "elevation-max", 90, searchHelp("elevation-max"))
	flag.Float64Var(&altitudeMin, "altitude-min", 0, searchHelp("altitude-min"))
	flag.Float64Var(&altitudeMax, "altitude-max", 0, searchHelp("altitude-max"))
	flag.Float64Var(&energyMin, "energy-min", 1e7, searchHelp("energy-min"))
	flag.Float64Var(&energyMax, "energy-max", 1e12, searchHelp("energy-max"))
	flag.Float64Var(&energyCut, "energy-cut", 1e3, searchHelp("energy-cut"))
	flag.IntVar(&primaryChannel, "primary-channel", 0, searchHelp("primary-channel"))
	flag.IntVar(&tausRequested, "t", 0, searchHelp("-t "))
	flag.BoolVar(&pemNoSea, "pem-no-sea", false, searchHelp("pem-no-sea"))
	flag.BoolVar(&fluxNeutrino, "flux-neutrino", false, searchHelp("flux-neutrino"))
	flag.Float64Var(&detectorRadius, "detector-radius", 0, searchHelp("detector-radius"))
	flag.StringVar(&materialsFile, "materials", "", searchHelp("materials"))
	flag.IntVar(&traceLevel, "trace-level", 0, searchHelp("trace-level"))
	flag.StringVar(&traceFile, "trace-file", "", searchHelp("trace-file"))
	flag.StringVar(&metricsURL, "metrics-push-url", "", searchHelp("metrics-push-url"))
	flag.Uint64Var(&seed, "seed", 0, searchHelp("--seed"))
	flag.BoolVar(&showHelp, "?", false, searchHelp("print help"))
	flag.Parse()

	if showHelp {
		for _, line := range help {
			fmt.Fprintln(os.Stderr, line)
		}
		os.Exit(0)
	}

	logger, err := danton.NewLogger(traceFile, traceLevel)
	if err != nil {
		showmsg("%s: %v", progname, err)
		os.Exit(1)
	}
	defer logger.Close()

	sampler := danton.DefaultSampler()
	sampler.CosTheta = danton.Range{Lo: cosThetaMin, Hi: cosThetaMax}
	sampler.Elevation = danton.Range{Lo: elevationMin, Hi: elevationMax}
	sampler.Altitude = danton.Range{Lo: altitudeMin, Hi: altitudeMax}
	sampler.Energy = danton.Range{Lo: energyMin, Hi: energyMax}
	if len(flag.Args()) > 0 {
		if pid, perr := strconv.Atoi(flag.Args()[0]); perr == nil {
			selectPrimaryPID(sampler, pid)
		}
	}

	var rng *danton.PRNG
	if seed != 0 {
		rng = danton.NewPRNGFromSeed(uint32(seed))
	} else {
		rng, err = danton.NewPRNG()
		if err != nil {
			showmsg("%s: %v", progname, err)
			os.Exit(1)
		}
	}

	materials, err := danton.LoadOrBuildMaterials(materialsFile)
	if err != nil {
		showmsg("%s: %v", progname, err)
		os.Exit(1)
	}

	earth := danton.NewEarth(pemNoSea)
	ctx := danton.NewContext(earth, sampler, rng, materials)
	ctx.EnergyCut = energyCut
	ctx.TausRequested = tausRequested
	ctx.FluxNeutrino = fluxNeutrino
	ctx.DetectorRadius = detectorRadius
	ctx.PrimaryChannel = danton.Species(primaryChannel)

	switch mode {
	case "forward":
		ctx.Mode = danton.ModeForward
	case "backward":
		ctx.Mode = danton.ModeBackward
	case "grammage":
		ctx.Mode = danton.ModeGrammage
	default:
		showmsg("%s: unknown mode %q (want forward|backward|grammage)", progname, mode)
		os.Exit(1)
	}

	out, err := danton.OpenOutput(outfile)
	if err != nil {
		showmsg("%s: %v", progname, err)
		os.Exit(1)
	}
	defer out.Close()

	rc := danton.NewRunController(ctx, logger)
	if err := rc.WriteHeader(out); err != nil {
		showmsg("%s: %v", progname, err)
		os.Exit(1)
	}

	writer := danton.NewRecordWriter(out)
	runErr := rc.Run(events, writer.Write)
	if flushErr := writer.Flush(); flushErr != nil && runErr == nil {
		runErr = flushErr
	}
	if runErr != nil {
		showmsg("%s: %v", progname, runErr)
		os.Exit(1)
	}

	if metricsURL != "" {
		if err := rc.Summary.PushTo(metricsURL, progname); err != nil {
			showmsg("%s: %v", progname, err)
		}
	}
}

// selectPrimaryPID restricts the sampler to a single primary species, given
// as a PDG code on the command line (danton.c's trailing [PID] argument).
func selectPrimaryPID(s *danton.Sampler, pid int) {
	for i := range s.SpeciesWeight {
		s.SpeciesWeight[i] = 0
	}
	species := [8]int{12, -12, 14, -14, 16, -16, 15, -15}
	for i, p := range species {
		if p == pid {
			s.SpeciesWeight[i] = 1
			return
		}
	}
	s.SpeciesWeight[danton.SpeciesNuTau] = 1
}
