package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"
)

const validationLayer = "VK_LAYER_KHRONOS_validation"

var deviceExtensions = []string{khr_swapchain.ExtensionName}

type ContextOptions struct {
	AppName    string
	Validation bool
}

type queueFamilyIndices struct {
	graphics *int
	present  *int
}

func (i *queueFamilyIndices) complete() bool {
	return i.graphics != nil && i.present != nil
}

// DeviceContext is the long-lived connection to the GPU: instance, window
// surface, logical device, queues and the command pool. It outlives every
// other GPU object.
type DeviceContext struct {
	window *sdl.Window

	globalDriver   core1_0.GlobalDriver
	instanceDriver core1_0.CoreInstanceDriver
	deviceDriver   core1_0.CoreDeviceDriver

	debugDriver    ext_debug_utils.ExtensionDriver
	debugMessenger ext_debug_utils.DebugUtilsMessenger

	surfaceExtension   khr_surface.ExtensionDriver
	swapchainExtension khr_swapchain.ExtensionDriver
	windowSurface      khr_surface.Surface

	physicalDevice core1_0.PhysicalDevice
	properties     *core1_0.PhysicalDeviceProperties
	families       queueFamilyIndices

	graphicsQueue core1_0.Queue
	presentQueue  core1_0.Queue

	commandPool core1_0.CommandPool
}

// NewDeviceContext connects to the first GPU that can render to and present
// on window. A partially built context is torn down on failure.
func NewDeviceContext(window *sdl.Window, opts ContextOptions) (*DeviceContext, error) {
	c := &DeviceContext{window: window}

	var err error
	c.globalDriver, err = core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "load vulkan driver")
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"create instance", func() error { return c.createInstance(opts) }},
		{"set up debug messenger", func() error { return c.setupDebugMessenger(opts.Validation) }},
		{"create window surface", c.createWindowSurface},
		{"pick physical device", c.pickPhysicalDevice},
		{"create logical device", c.createLogicalDevice},
		{"create command pool", c.createCommandPool},
	}

	for _, step := range steps {
		err = step.fn()
		if err != nil {
			c.Destroy()
			return nil, errors.Wrap(err, step.name)
		}
	}

	render.Logger().Info("vulkan device ready",
		"device", c.properties.DeviceName,
		"graphicsFamily", *c.families.graphics,
		"presentFamily", *c.families.present)

	return c, nil
}

func (c *DeviceContext) createInstance(opts ContextOptions) error {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    opts.AppName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "sorpcube",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	extensions, _, err := c.globalDriver.AvailableExtensions()
	if err != nil {
		return err
	}

	for _, ext := range c.window.VulkanGetInstanceExtensions() {
		_, hasExt := extensions[ext]
		if !hasExt {
			return errors.Newf("missing instance extension %s", ext)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext)
	}

	_, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]
	if enumerationSupported {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if opts.Validation {
		layers, _, err := c.globalDriver.AvailableLayers()
		if err != nil {
			return err
		}

		_, hasValidation := layers[validationLayer]
		if !hasValidation {
			return errors.Newf("layer %s not available, install the Vulkan SDK or disable validation", validationLayer)
		}

		instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, validationLayer)
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext_debug_utils.ExtensionName)
		instanceOptions.Next = debugMessengerOptions()
	}

	c.instanceDriver, _, err = c.globalDriver.CreateInstance(nil, instanceOptions)
	return err
}

func (c *DeviceContext) setupDebugMessenger(validation bool) error {
	if !validation {
		return nil
	}

	var err error
	c.debugDriver = ext_debug_utils.CreateExtensionDriverFromCoreDriver(c.instanceDriver)
	c.debugMessenger, _, err = c.debugDriver.CreateDebugUtilsMessenger(nil, debugMessengerOptions())
	return err
}

func (c *DeviceContext) createWindowSurface() error {
	c.surfaceExtension = khr_surface.CreateExtensionDriverFromCoreDriver(c.instanceDriver)

	surface, err := vkng_sdl2.CreateSurface(c.instanceDriver.Instance(), c.surfaceExtension, c.window)
	if err != nil {
		return errors.Mark(err, render.ErrSurfaceCreation)
	}

	c.windowSurface = surface
	return nil
}

func (c *DeviceContext) pickPhysicalDevice() error {
	physicalDevices, _, err := c.instanceDriver.EnumeratePhysicalDevices()
	if err != nil {
		return err
	}

	log := render.Logger()
	for _, device := range physicalDevices {
		families, reason := c.checkDevice(device)
		if reason != "" {
			log.Debug("skipping physical device", "reason", reason)
			continue
		}

		c.properties, err = c.instanceDriver.GetPhysicalDeviceProperties(device)
		if err != nil {
			return err
		}

		c.physicalDevice = device
		c.families = families
		return nil
	}

	return errors.New("no GPU supports graphics, presentation, swapchains and sampler anisotropy")
}

// checkDevice returns the queue families to use on device, or the reason it
// cannot be used.
func (c *DeviceContext) checkDevice(device core1_0.PhysicalDevice) (queueFamilyIndices, string) {
	families, err := c.findQueueFamilies(device)
	if err != nil {
		return families, err.Error()
	}
	if !families.complete() {
		return families, "no graphics or present queue family"
	}

	extensions, _, err := c.instanceDriver.EnumerateDeviceExtensionProperties(device)
	if err != nil {
		return families, err.Error()
	}
	for _, ext := range deviceExtensions {
		if _, ok := extensions[ext]; !ok {
			return families, "missing extension " + ext
		}
	}

	support, err := c.querySurfaceSupport(device)
	if err != nil {
		return families, err.Error()
	}
	if len(support.formats) == 0 || len(support.presentModes) == 0 {
		return families, "no surface formats or present modes"
	}

	features := c.instanceDriver.GetPhysicalDeviceFeatures(device)
	if !features.SamplerAnisotropy {
		return families, "no sampler anisotropy"
	}

	return families, ""
}

func (c *DeviceContext) findQueueFamilies(device core1_0.PhysicalDevice) (queueFamilyIndices, error) {
	indices := queueFamilyIndices{}
	queueFamilies := c.instanceDriver.GetPhysicalDeviceQueueFamilyProperties(device)

	for queueFamilyIdx, queueFamily := range queueFamilies {
		if indices.graphics == nil && (queueFamily.QueueFlags&core1_0.QueueGraphics) != 0 {
			indices.graphics = new(int)
			*indices.graphics = queueFamilyIdx
		}

		supported, _, err := c.surfaceExtension.GetPhysicalDeviceSurfaceSupport(c.windowSurface, device, queueFamilyIdx)
		if err != nil {
			return indices, err
		}

		if supported && indices.present == nil {
			indices.present = new(int)
			*indices.present = queueFamilyIdx
		}

		if indices.complete() {
			break
		}
	}

	return indices, nil
}

type surfaceSupport struct {
	capabilities *khr_surface.SurfaceCapabilities
	formats      []khr_surface.SurfaceFormat
	presentModes []khr_surface.PresentMode
}

func (c *DeviceContext) querySurfaceSupport(device core1_0.PhysicalDevice) (surfaceSupport, error) {
	var support surfaceSupport
	var err error

	support.capabilities, _, err = c.surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(c.windowSurface, device)
	if err != nil {
		return support, err
	}

	support.formats, _, err = c.surfaceExtension.GetPhysicalDeviceSurfaceFormats(c.windowSurface, device)
	if err != nil {
		return support, err
	}

	support.presentModes, _, err = c.surfaceExtension.GetPhysicalDeviceSurfacePresentModes(c.windowSurface, device)
	return support, err
}

func (c *DeviceContext) createLogicalDevice() error {
	uniqueQueueFamilies := []int{*c.families.graphics}
	if uniqueQueueFamilies[0] != *c.families.present {
		uniqueQueueFamilies = append(uniqueQueueFamilies, *c.families.present)
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	for _, queueFamily := range uniqueQueueFamilies {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{1.0},
		})
	}

	extensionNames := append([]string(nil), deviceExtensions...)

	extensions, _, err := c.instanceDriver.EnumerateDeviceExtensionProperties(c.physicalDevice)
	if err != nil {
		return err
	}

	_, supported := extensions[khr_portability_subset.ExtensionName]
	if supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	c.deviceDriver, _, err = c.instanceDriver.CreateDevice(c.physicalDevice, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos: queueFamilyOptions,
		EnabledFeatures: &core1_0.PhysicalDeviceFeatures{
			SamplerAnisotropy: true,
		},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return err
	}

	c.swapchainExtension = khr_swapchain.CreateExtensionDriverFromCoreDriver(c.deviceDriver)
	c.graphicsQueue = c.deviceDriver.GetQueue(*c.families.graphics, 0)
	c.presentQueue = c.deviceDriver.GetQueue(*c.families.present, 0)
	return nil
}

func (c *DeviceContext) createCommandPool() error {
	pool, _, err := c.deviceDriver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: *c.families.graphics,
	})
	if err != nil {
		return err
	}

	c.commandPool = pool
	return nil
}

func (c *DeviceContext) Driver() core1_0.CoreDeviceDriver {
	return c.deviceDriver
}

func (c *DeviceContext) Properties() *core1_0.PhysicalDeviceProperties {
	return c.properties
}

// WaitIdle blocks until the device has no outstanding work.
func (c *DeviceContext) WaitIdle() error {
	_, err := c.deviceDriver.DeviceWaitIdle()
	return errors.Wrap(err, "device wait idle")
}

// Destroy releases everything the context created. Every object built on
// the context must already be destroyed.
func (c *DeviceContext) Destroy() {
	if c.commandPool.Initialized() {
		c.deviceDriver.DestroyCommandPool(c.commandPool, nil)
		c.commandPool = core1_0.CommandPool{}
	}

	if c.deviceDriver != nil {
		c.deviceDriver.DestroyDevice(nil)
		c.deviceDriver = nil
	}

	if c.debugMessenger.Initialized() {
		c.debugDriver.DestroyDebugUtilsMessenger(c.debugMessenger, nil)
		c.debugMessenger = ext_debug_utils.DebugUtilsMessenger{}
	}

	if c.windowSurface.Initialized() {
		c.surfaceExtension.DestroySurface(c.windowSurface, nil)
		c.windowSurface = khr_surface.Surface{}
	}

	if c.instanceDriver != nil {
		c.instanceDriver.DestroyInstance(nil)
		c.instanceDriver = nil
	}
}
